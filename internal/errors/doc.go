// Package errors provides structured, coded errors for glog2d6-api.
//
// Two error kinds matter to the action pipeline:
//
//   - User validation failures: CodeInvalidArgument errors built from a
//     ValidationErrors collector. Their messages are surfaced verbatim to
//     the acting player and halt only the current action.
//
//   - System faults: anything else, normalized to CodeInternal. These are
//     logged with phase context and reduced to a generic notice.
//
// Basic usage:
//
//	err := errors.NotFoundf("character %s not found", id)
//
//	if err := repo.Get(ctx, input); err != nil {
//	    return errors.Wrap(err, "failed to get character")
//	}
//
//	if errors.IsNotFound(err) {
//	    // handle missing record
//	}
package errors
