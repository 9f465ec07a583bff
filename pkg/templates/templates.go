// Package templates holds the documented default configuration files
// written on first run.
package templates

// ConfigYAML is the default config.yaml. Every value is commented out;
// uncommented values override the built-in defaults.
const ConfigYAML = `# LexDB configuration.
#
# All values are optional; the commented values below are the defaults.
# Environment variables with the LEXDB_ prefix override this file, e.g.
# LEXDB_DATABASE_HOST=db.example.org

database:
  # host: localhost
  # port: 5432
  # user: postgres
  # password: postgres
  # database: lexdb
  # ssl_mode: disable
  # max_connections: 10

pipeline:
  # db_fetch_batch: 5000
  # embedding_batch: 512
  # db_write_batch: 10000
  # num_cleaners: 4
  # num_embedders: 1
  # num_writers: 2
  # raw_queue_size: 10
  # cleaned_queue_size: 10
  # embedded_queue_size: 5
  # min_definition_length: 5
  # skip_duplicates: true
  # track_provenance: false

embedding:
  # url: http://localhost:8756/embed
  # model: paraphrase-multilingual-MiniLM-L12-v2
  # dimension: 384
  # timeout_sec: 120

cache:
  # enabled: true
  # addr: localhost:6379
  # db: 0
  # ttl_sec: 604800
  # key_version: v1

log:
  # format: text
  # level: info
  # destination: stderr
`

// SourcesTOML is the default sources.toml catalog with one example per
// supported format.
const SourcesTOML = `# LexDB source catalog.
#
# Each [[source]] describes one dataset that can be ingested with
# "lexdb ingest --source-id <id> <file>".

[[source]]
id = "kaikki-de"
name = "Kaikki.org German Wiktionary extract"
format = "jsonl"
url = "https://kaikki.org/dictionary/German/"
languages = ["de"]
license = "CC BY-SA 4.0"
quality = "high"

[[source]]
id = "swadesh-207"
name = "Swadesh 207 comparative wordlist"
format = "csv"
url = "https://en.wiktionary.org/wiki/Appendix:Swadesh_lists"
languages = ["en", "de", "fr", "es", "it", "ru", "la"]
license = "CC BY-SA 4.0"
quality = "medium"
`
