package signature

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sort"

	"github.com/bwmarrin/snowflake"
)

// MaterialLine is one consumed material lot with its quantity. A sorted slice
// of these is the canonical form a SKU signature is derived from.
type MaterialLine struct {
	MaterialID   snowflake.ID `json:"material_id"`
	QuantityUsed int          `json:"quantity_used"`
}

var (
	ErrNoMaterials       = errors.New("no_materials")
	ErrInvalidQuantity   = errors.New("invalid_material_quantity")
	ErrDuplicateMaterial = errors.New("duplicate_material")
)

// Canonicalize validates the lines and returns them sorted by material ID
// (lexicographic on the string form) so that input order never affects the
// resulting signature. A material ID appearing more than once is rejected
// rather than summed.
func Canonicalize(lines []MaterialLine) ([]MaterialLine, error) {
	if len(lines) == 0 {
		return nil, ErrNoMaterials
	}

	seen := make(map[snowflake.ID]struct{}, len(lines))
	out := make([]MaterialLine, 0, len(lines))
	for _, line := range lines {
		if line.MaterialID == 0 || line.QuantityUsed <= 0 {
			return nil, ErrInvalidQuantity
		}
		if _, dup := seen[line.MaterialID]; dup {
			return nil, ErrDuplicateMaterial
		}
		seen[line.MaterialID] = struct{}{}
		out = append(out, line)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].MaterialID.String() < out[j].MaterialID.String()
	})

	return out, nil
}

// Encode serializes canonical lines deterministically: a JSON array with
// fixed field order and no whitespace.
func Encode(lines []MaterialLine) ([]byte, error) {
	return json.Marshal(lines)
}

// Hash digests the canonical lines into the SKU dedup key. The digest is a
// lookup key into the catalog, not an integrity check, so MD5 is adequate.
func Hash(lines []MaterialLine) (string, error) {
	encoded, err := Encode(lines)
	if err != nil {
		return "", err
	}
	sum := md5.Sum(encoded)
	return hex.EncodeToString(sum[:]), nil
}

// Build canonicalizes, encodes and hashes in one step, returning the sorted
// lines, the stored canonical JSON and the digest.
func Build(lines []MaterialLine) (sorted []MaterialLine, canonical []byte, digest string, err error) {
	sorted, err = Canonicalize(lines)
	if err != nil {
		return nil, nil, "", err
	}
	canonical, err = Encode(sorted)
	if err != nil {
		return nil, nil, "", err
	}
	sum := md5.Sum(canonical)
	return sorted, canonical, hex.EncodeToString(sum[:]), nil
}
