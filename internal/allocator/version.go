package allocator

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// ABIVersion identifies the binary layout this package writes: the header
// bit encoding, class index geometry and sentinel words described in the
// allocator's data model. A caller embedding this allocator across a
// process boundary (e.g. reopening a heap image written by another build)
// should check it with CheckABI before trusting existing heap contents.
const ABIVersion = "1.0.0"

// CheckABI reports whether this build's ABIVersion satisfies constraint, a
// semver constraint string (e.g. "^1.0.0" or ">=1.0.0, <2.0.0"). It is the
// allocator's only compatibility guarantee: the class index layout, the
// sentinel words and the header bit positions are free to change across a
// major version.
func CheckABI(constraint string) error {
	v, err := semver.NewVersion(ABIVersion)
	if err != nil {
		return fmt.Errorf("allocator: invalid ABI version %q: %w", ABIVersion, err)
	}

	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("allocator: invalid ABI constraint %q: %w", constraint, err)
	}

	if !c.Check(v) {
		return fmt.Errorf("allocator: ABI %s does not satisfy constraint %q", ABIVersion, constraint)
	}

	return nil
}
