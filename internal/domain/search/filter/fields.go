package filter

// Field keys shared by the compiler and every backend translator.
const (
	FieldChainID     = "chain_id"
	FieldHasMCP      = "has_mcp"
	FieldHasA2A      = "has_a2a"
	FieldHasX402     = "has_x402"
	FieldSkills      = "skills"
	FieldDomains     = "domains"
	FieldReputation  = "reputation_score"
	FieldTrustScore  = "trust_score"
	FieldOwner       = "owner"
	FieldENS         = "ens"
	FieldDID         = "did"
	FieldCreatedAt   = "created_at"
	FieldUpdatedAt   = "updated_at"
	FieldLastPingAt  = "last_ping_at"
	FieldLastCrawlAt = "last_crawl_at"
	FieldActive      = "active"
)
