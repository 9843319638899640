package anonymizer

// Entity records one placeholder substitution. It is created once during
// anonymization and immutable afterwards; Text always holds the exact source
// substring source[Start:End], which makes the substitution reversible.
type Entity struct {
	Start       int    `json:"start"`
	End         int    `json:"end"`
	Label       string `json:"label"`
	Text        string `json:"text"`
	Replacement string `json:"replacement"`
}

// Metadata is the sole channel through which deanonymization recovers the
// original text. Entities are ordered by ascending Start. The struct
// round-trips through encoding/json without loss.
type Metadata struct {
	Entities []Entity `json:"entities"`
}
