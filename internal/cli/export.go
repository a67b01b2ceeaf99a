package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/keepline/internal/ir"
	"github.com/roach88/keepline/internal/partition"
	"github.com/roach88/keepline/internal/store"
)

// Export encodings.
const (
	ExportJSON = "json"
	ExportYAML = "yaml"
	ExportTOML = "toml"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	As           string
	IncludedOnly bool
	From         float64
	To           float64
}

// ExportDocument is the persisted form of a project's partition. Segments
// are records in time order; readers must not rely on that order.
type ExportDocument struct {
	Version       string             `json:"version" yaml:"version" toml:"version"`
	ID            string             `json:"id" yaml:"id" toml:"id"`
	Name          string             `json:"name" yaml:"name" toml:"name"`
	Duration      float64            `json:"duration" yaml:"duration" toml:"duration"`
	TotalIncluded float64            `json:"total_included" yaml:"total_included" toml:"total_included"`
	Segments      []ir.SegmentRecord `json:"segments" yaml:"segments" toml:"segments"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export <project-id>",
		Short: "Write a project's segment list as JSON, YAML or TOML",
		Long: `Write a project's segments as {id, start_time, end_time, is_included}
records. With --included-only just the kept ranges are written, which is
what a render pipeline consumes. --from and --to restrict the list to
segments overlapping that window; segments are written whole, not clipped.

Examples:
  keepline export intro --as yaml
  keepline export intro --as toml --included-only > keep.toml
  keepline export intro --from 30 --to 90`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.As, "as", ExportJSON, "encoding (json|yaml|toml)")
	cmd.Flags().BoolVar(&opts.IncludedOnly, "included-only", false, "only write included segments")
	cmd.Flags().Float64Var(&opts.From, "from", 0, "only write segments ending after this time")
	cmd.Flags().Float64Var(&opts.To, "to", 0, "only write segments starting before this time (0: no limit)")

	return cmd
}

func runExport(ctx context.Context, opts *ExportOptions, id string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	switch opts.As {
	case ExportJSON, ExportYAML, ExportTOML:
	default:
		return f.Fail(ExitCommandError, ErrCodeInvalidOption, fmt.Sprintf("invalid encoding %q: must be json, yaml or toml", opts.As), nil)
	}

	st, err := openStore(opts.RootOptions, f)
	if err != nil {
		return err
	}
	defer st.Close()

	p, err := readProject(ctx, st, id, f)
	if err != nil {
		return err
	}
	segs, err := st.QuerySegments(ctx, id, store.SegmentFilter{From: opts.From, To: opts.To})
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeInvalidOption, err.Error(), nil)
	}
	if opts.IncludedOnly {
		segs = partition.Included(segs)
	}

	doc := ExportDocument{
		Version:       ir.RecordVersion,
		ID:            p.ID,
		Name:          p.Name,
		Duration:      p.Duration,
		TotalIncluded: partition.TotalIncluded(segs),
		Segments:      ir.Records(segs),
	}
	if err := EncodeExport(cmd.OutOrStdout(), opts.As, doc); err != nil {
		return f.Fail(ExitCommandError, ErrCodeExport, err.Error(), nil)
	}
	opts.logger().Info("project exported", "id", p.ID, "as", opts.As, "segments", len(segs))
	return nil
}

// EncodeExport writes doc to w in the given encoding.
func EncodeExport(w io.Writer, as string, doc ExportDocument) error {
	var buf bytes.Buffer
	switch as {
	case ExportJSON:
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
	case ExportYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
	case ExportTOML:
		if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
			return fmt.Errorf("encode toml: %w", err)
		}
	default:
		return fmt.Errorf("unknown encoding %q", as)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// DecodeExport parses an exported document in the given encoding.
func DecodeExport(data []byte, as string) (ExportDocument, error) {
	var doc ExportDocument
	var err error
	switch as {
	case ExportJSON:
		err = json.Unmarshal(data, &doc)
	case ExportYAML:
		err = yaml.Unmarshal(data, &doc)
	case ExportTOML:
		err = toml.Unmarshal(data, &doc)
	default:
		err = fmt.Errorf("unknown encoding %q", as)
	}
	if err != nil {
		return ExportDocument{}, fmt.Errorf("decode %s: %w", as, err)
	}
	if doc.Version != "" && doc.Version != ir.RecordVersion {
		return ExportDocument{}, fmt.Errorf("unsupported record version %q (want %s)", doc.Version, ir.RecordVersion)
	}
	return doc, nil
}
