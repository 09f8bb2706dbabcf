package driver

var IndexQueries = []string{
	"CREATE INDEX ON :Canonical(id);",
	"CREATE INDEX ON :Canonical(type);",
	"CREATE INDEX ON :Document(id);",
}

const (
	// seq keeps the linker's scan order so a restored graph matches new
	// mentions exactly as before the restart.
	SaveCanonicalNodesQuery = `
		UNWIND $entities AS e
		MERGE (n:Canonical {id: e.id})
		SET n.seq = e.seq,
			n.type = e.type,
			n.name = e.name,
			n.aliases = e.aliases,
			n.confidence = e.confidence
		RETURN count(n) AS saved
	`

	// Links are keyed by their position in the export so repeated saves of
	// the same export do not duplicate relationships, while duplicate links
	// in the export each get their own relationship.
	SaveLinksQuery = `
		UNWIND $links AS l
		MATCH (s:Canonical {id: l.source})
		MATCH (t:Canonical {id: l.target})
		MERGE (s)-[r:LINK {seq: l.seq}]->(t)
		SET r.relation = l.relation,
			r.confidence = l.confidence,
			r.evidence = l.evidence
		RETURN count(r) AS saved
	`

	SaveDocumentMentionsQuery = `
		MERGE (d:Document {id: $doc_id})
		SET d.context = $context,
			d.processed_at = $processed_at
		WITH d
		UNWIND $mentions AS m
		MATCH (c:Canonical {id: m.canonical_id})
		MERGE (d)-[r:MENTIONS {raw_text: m.raw_text}]->(c)
		SET r.confidence = m.confidence,
			r.pages = m.pages,
			r.occurrence_count = m.occurrence_count
		RETURN count(r) AS saved
	`

	GetCanonicalNodesQuery = `
		MATCH (n:Canonical)
		RETURN n.id AS id, n.type AS type, n.name AS name, n.aliases AS aliases, n.confidence AS confidence
		ORDER BY n.seq, n.id
	`

	GetLinksQuery = `
		MATCH (s:Canonical)-[r:LINK]->(t:Canonical)
		RETURN s.id AS source, t.id AS target, r.relation AS relation, r.confidence AS confidence, r.evidence AS evidence
		ORDER BY r.seq
	`
)
