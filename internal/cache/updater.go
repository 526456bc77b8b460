package cache

import (
	"context"
	"errors"

	"github.com/oshokin/thinkscript-sync/internal/domain/script"
	"github.com/oshokin/thinkscript-sync/internal/logger"
)

// Result summarizes one pass of script updates over a document.
type Result struct {
	// Updated lists scripts whose CODE changed, in processing order.
	Updated []string
	// Unchanged lists scripts whose CODE already matched.
	Unchanged []string
	// Missing is the script that had no entity. Processing stopped there.
	Missing string
}

// Changed reports whether the document needs to be written back.
func (r *Result) Changed() bool {
	return len(r.Updated) > 0
}

// ApplyScripts writes the encoded downloads into the document in order.
// A script without a matching entity stops the pass. Updates applied before
// it stay in the document and are still reported as Updated.
func ApplyScripts(ctx context.Context, doc *Document, downloads script.Downloads) (*Result, error) {
	result := new(Result)

	for i := range downloads {
		download := &downloads[i]

		if _, err := doc.Code(download.Name); err != nil {
			if errors.Is(err, ErrScriptNotFound) {
				logger.Errorf(ctx, "Failed to find script with name %s", download.Name)

				result.Missing = download.Name

				return result, nil
			}

			return result, err
		}

		text, err := download.Read()
		if err != nil {
			return result, err
		}

		changed, err := doc.SetCode(download.Name, script.Encode(text))
		if err != nil {
			return result, err
		}

		if !changed {
			logger.Infof(ctx, "No changes to script %s", download.Name)

			result.Unchanged = append(result.Unchanged, download.Name)

			continue
		}

		logger.Infof(ctx, "Updated contents of script %s", download.Name)

		result.Updated = append(result.Updated, download.Name)
	}

	return result, nil
}
