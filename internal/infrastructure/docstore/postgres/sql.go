package postgres

const notifyChannel = "docstore_changes"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
  namespace  TEXT        NOT NULL,
  collection TEXT        NOT NULL,
  id         TEXT        NOT NULL,
  data       JSONB       NOT NULL DEFAULT '{}'::jsonb,
  seq        BIGSERIAL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  PRIMARY KEY (namespace, collection, id)
);
CREATE INDEX IF NOT EXISTS documents_ns_coll_seq_idx ON documents (namespace, collection, seq);
`

// $5 lists the fields that take the server clock.
const insertDocSQL = `
INSERT INTO documents (namespace, collection, id, data)
VALUES ($1, $2, $3, $4::jsonb || (
  SELECT COALESCE(jsonb_object_agg(f, to_jsonb(now())), '{}'::jsonb)
  FROM unnest($5::text[]) AS f
))
`

const listDocsSQL = `
SELECT id, data FROM documents
WHERE namespace = $1 AND collection = $2
ORDER BY seq ASC
`

const getDocSQL = `
SELECT id, data FROM documents
WHERE namespace = $1 AND collection = $2 AND id = $3
`

const deleteDocSQL = `
DELETE FROM documents
WHERE namespace = $1 AND collection = $2 AND id = $3
`

const countDocsSQL = `
SELECT count(*) FROM documents
WHERE namespace = $1 AND collection = $2
`

const notifySQL = `SELECT pg_notify($1, $2)`
