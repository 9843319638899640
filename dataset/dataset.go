// Package dataset loads RONEC-style gold-labeled corpora for evaluation.
//
// An example is a pre-tokenized sentence with one BIO2 tag per token and
// per-token space flags. Examples are read-only inputs: loading validates
// structure up front and fails fast on malformed records, since a silent
// token/tag misalignment would corrupt every downstream character offset.
package dataset

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	mmap "github.com/edsrzf/mmap-go"
	"github.com/parquet-go/parquet-go"
	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"
	"k8s.io/klog/v2"

	"github.com/privmask/go-anonymizer/spans"
)

// Example is one gold-labeled sentence. Tokens, NERTags and SpaceAfter are
// parallel slices of equal length.
type Example struct {
	Tokens     []string `json:"tokens" parquet:"tokens,list"`
	NERTags    []string `json:"ner_tags" parquet:"ner_tags,list"`
	SpaceAfter []bool   `json:"space_after" parquet:"space_after,list"`
}

// Validate checks the parallel-slice invariant. SpaceAfter may be one
// shorter than Tokens (the trailing flag is meaningless).
func (e *Example) Validate() error {
	if len(e.NERTags) != len(e.Tokens) {
		return errors.Errorf("%d ner_tags for %d tokens", len(e.NERTags), len(e.Tokens))
	}
	if len(e.SpaceAfter) != len(e.Tokens) && len(e.SpaceAfter) != len(e.Tokens)-1 {
		return errors.Errorf("%d space_after flags for %d tokens", len(e.SpaceAfter), len(e.Tokens))
	}
	return nil
}

// Text reconstructs the flat sentence text.
func (e *Example) Text() (string, error) {
	text, _, err := spans.Detokenize(e.Tokens, e.SpaceAfter)
	return text, err
}

// GoldSpans converts the example's BIO2 tags to character-level entity spans.
func (e *Example) GoldSpans() ([]spans.Span, error) {
	return spans.FromBIO2(e.Tokens, e.NERTags, e.SpaceAfter)
}

// Load reads a dataset from path, dispatching on the file extension:
// ".parquet" is read as a parquet file, everything else as a JSON list.
// A limit > 0 caps the number of examples returned.
func Load(path string, limit int) ([]Example, error) {
	if strings.EqualFold(filepath.Ext(path), ".parquet") {
		return LoadParquet(path, limit)
	}
	return LoadJSON(path, limit)
}

// LoadJSON reads a JSON list of examples. The file is memory-mapped rather
// than slurped, since evaluation corpora can run to hundreds of megabytes.
func LoadJSON(path string, limit int) ([]Example, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open dataset %q", path)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to stat dataset %q", path)
	}
	if info.Size() == 0 {
		return nil, errors.Errorf("dataset %q is empty", path)
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to mmap dataset %q", path)
	}
	defer func() { _ = data.Unmap() }()

	var examples []Example
	if err := json.Unmarshal(data, &examples); err != nil {
		return nil, errors.Wrapf(err, "failed to parse dataset %q", path)
	}
	return prepare(path, examples, limit)
}

// LoadParquet reads examples from a parquet file with columns
// tokens, ner_tags and space_after (HuggingFace datasets ship in this form).
func LoadParquet(path string, limit int) ([]Example, error) {
	examples, err := parquet.ReadFile[Example](path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read parquet dataset %q", path)
	}
	return prepare(path, examples, limit)
}

// prepare validates every example, applies the limit and logs once when the
// corpus contains non-NFC token text. Offsets are byte-based, so consumers
// that normalize text before detection will mis-align spans on such corpora.
func prepare(path string, examples []Example, limit int) ([]Example, error) {
	if limit > 0 && len(examples) > limit {
		examples = examples[:limit]
	}
	nonNFC := 0
	for i := range examples {
		if err := examples[i].Validate(); err != nil {
			return nil, errors.Wrapf(err, "malformed example %d in %q", i, path)
		}
		for _, tok := range examples[i].Tokens {
			if !norm.NFC.IsNormalString(tok) {
				nonNFC++
				break
			}
		}
	}
	if nonNFC > 0 {
		klog.Warningf("dataset %q: %d examples contain non-NFC tokens; detectors that normalize input will report shifted offsets", path, nonNFC)
	}
	klog.V(1).Infof("loaded %d examples from %q", len(examples), path)
	return examples, nil
}
