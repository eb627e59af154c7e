package cli

import (
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/cinegraph/internal/engine"
	"github.com/roach88/cinegraph/internal/index"
	"github.com/roach88/cinegraph/internal/model"
	"github.com/roach88/cinegraph/internal/store"
)

// EntityOutput describes one entity and its direct neighbors.
type EntityOutput struct {
	ID      model.EntityID `json:"id"`
	Kind    model.Kind     `json:"kind"`
	Display string         `json:"display"`
	Fields  map[string]any `json:"fields"`
	Related []RelatedGroup `json:"related"`
}

// RelatedGroup lists the neighbors through one relationship.
type RelatedGroup struct {
	Relationship index.Relationship    `json:"relationship"`
	Entities     []engine.ResultEntity `json:"entities"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <kind> <id>",
		Short: "Print one entity with its attributes and neighbors",
		Long: `Look up an entity by kind and id and print its attributes together with
every entity directly related to it.

Ids are assigned in dataset record order starting at 1.

Examples:
  cinegraph show film 31 --dataset films.yaml
  cinegraph show actor 17 --dataset films.sql --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(rootOpts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runShow(opts *RootOptions, kindArg, idArg string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	kind, err := model.ParseKind(kindArg)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeUnknownKind, err.Error(), nil)
	}
	n, err := strconv.ParseInt(idArg, 10, 64)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("invalid id %q", idArg), nil)
	}

	ctx, stop := commandContext(cmd)
	defer stop()

	st, idx, err := loadDataset(ctx, opts.Dataset)
	if err != nil {
		return failLoad(formatter, ExitCommandError, err)
	}

	entity, err := st.GetByID(kind, model.EntityID(n))
	if errors.Is(err, store.ErrNotFound) {
		return formatter.Fail(ExitFailure, ErrCodeEntityMissing, fmt.Sprintf("no %s with id %d", kind, n), nil)
	}
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeGeneric, err.Error(), nil)
	}

	out, err := describeEntity(st, idx, entity)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeGeneric, err.Error(), nil)
	}

	if formatter.IsJSON() {
		return formatter.Success(out)
	}
	return outputEntityText(formatter, out)
}

// describeEntity collects the attributes and neighbors of e.
func describeEntity(st *store.Store, idx *index.Index, e model.Entity) (EntityOutput, error) {
	out := EntityOutput{
		ID:      e.EntityID(),
		Kind:    e.Kind(),
		Display: e.Display(),
		Fields:  make(map[string]any),
		Related: []RelatedGroup{},
	}
	for _, spec := range model.Schema[e.Kind()] {
		if v, ok := e.Field(spec.Name); ok {
			out.Fields[spec.Name] = fieldValue(v)
		}
	}

	for _, rel := range index.Relationships {
		left, right, _ := rel.Endpoints()
		if e.Kind() != left && e.Kind() != right {
			continue
		}
		seq, err := idx.Neighbors(e.EntityID(), rel)
		if err != nil {
			return EntityOutput{}, err
		}
		group := RelatedGroup{Relationship: rel, Entities: []engine.ResultEntity{}}
		for id := range seq {
			n, err := st.Lookup(id)
			if err != nil {
				return EntityOutput{}, err
			}
			group.Entities = append(group.Entities, engine.ResultEntity{ID: id, Kind: n.Kind(), Display: n.Display()})
		}
		out.Related = append(out.Related, group)
	}
	return out, nil
}

// fieldValue converts an attribute to its JSON form.
func fieldValue(v model.Value) any {
	switch v := v.(type) {
	case model.String:
		return string(v)
	case model.Int:
		return int64(v)
	case model.Date:
		return v.String()
	default:
		return nil
	}
}

func outputEntityText(formatter *OutputFormatter, out EntityOutput) error {
	w := formatter.Writer
	fmt.Fprintf(w, "%s %d: %s\n", out.Kind, out.ID, out.Display)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, spec := range model.Schema[out.Kind] {
		v := out.Fields[spec.Name]
		if v == nil {
			v = "-"
		}
		fmt.Fprintf(tw, "  %s\t%v\n", spec.Name, v)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, g := range out.Related {
		fmt.Fprintf(w, "%s (%d)\n", g.Relationship, len(g.Entities))
		for _, e := range g.Entities {
			fmt.Fprintf(w, "  %s %d: %s\n", e.Kind, e.ID, e.Display)
		}
	}
	return nil
}
