package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/keepline/internal/ir"
	"github.com/roach88/keepline/internal/partition"
	"github.com/roach88/keepline/internal/store"
)

// openStore opens the configured database or reports why it could not.
func openStore(opts *RootOptions, f *OutputFormatter) (*store.Store, error) {
	st, err := store.Open(opts.Database)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeStore, fmt.Sprintf("failed to open database %s: %v", opts.Database, err), nil)
	}
	f.VerboseLog("Opened database %s", opts.Database)
	return st, nil
}

// readProject loads a project, mapping a missing ID to ErrCodeNoProject.
func readProject(ctx context.Context, st *store.Store, id string, f *OutputFormatter) (store.Project, error) {
	p, err := st.ReadProject(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return p, f.Fail(ExitCommandError, ErrCodeNoProject, fmt.Sprintf("project not found: %s", id), nil)
	}
	if err != nil {
		return p, f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	return p, nil
}

// PartitionView is the JSON shape of a partition and its aggregates.
type PartitionView struct {
	Segments      []ir.SegmentRecord `json:"segments"`
	TotalIncluded float64            `json:"total_included"`
	IncludedCount int                `json:"included_count"`
	Hash          string             `json:"hash,omitempty"`
}

func newPartitionView(segs []ir.Segment, hash string) PartitionView {
	return PartitionView{
		Segments:      ir.Records(segs),
		TotalIncluded: partition.TotalIncluded(segs),
		IncludedCount: partition.IncludedCount(segs),
		Hash:          hash,
	}
}

// formatPartition renders one line per segment plus a summary line.
func formatPartition(segs []ir.Segment) string {
	var b strings.Builder
	for _, s := range segs {
		tag := "excluded"
		if s.Included {
			tag = "included"
		}
		fmt.Fprintf(&b, "  %10.3f  %10.3f  %-8s  %s\n", s.Start, s.End, tag, s.ID)
	}
	fmt.Fprintf(&b, "Included: %gs in %d segment(s)\n", partition.TotalIncluded(segs), partition.IncludedCount(segs))
	return b.String()
}
