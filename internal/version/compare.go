package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rxtech-lab/argo-strategy-builder/pkg/errors"
)

// CheckVersionCompatibility checks whether a graph document written by
// documentVersion can be compiled by builderVersion.
//
// Compatibility Rules:
//   - If either version is "main" (development build), the check is skipped
//   - Major and minor versions must match exactly
//   - Patch versions can differ (a 0.4.2 document compiles on a 0.4.0 builder)
//
// Examples:
//   - Builder 0.4.0, Document 0.4.0 -> OK
//   - Builder 0.4.1, Document 0.4.3 -> OK (patch differs)
//   - Builder 0.5.0, Document 0.4.0 -> ERROR (minor differs)
//   - Builder main, Document 0.4.0 -> OK (dev build)
func CheckVersionCompatibility(builderVersion, documentVersion string) error {
	builderVersion = strings.TrimPrefix(builderVersion, "v")
	documentVersion = strings.TrimPrefix(documentVersion, "v")

	if builderVersion == "main" || documentVersion == "main" {
		return nil
	}

	builder, err := semver.NewVersion(builderVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid builder version '%s'", builderVersion)
	}

	document, err := semver.NewVersion(documentVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid document version '%s'", documentVersion)
	}

	if builder.Major() != document.Major() {
		return errors.Newf(errors.ErrCodeInvalidVersion,
			"major version mismatch: builder is %d.x.x but document requires %d.x.x",
			builder.Major(), document.Major())
	}

	if builder.Minor() != document.Minor() {
		return errors.Newf(errors.ErrCodeInvalidVersion,
			"minor version mismatch: builder is %d.%d.x but document requires %d.%d.x",
			builder.Major(), builder.Minor(), document.Major(), document.Minor())
	}

	return nil
}
