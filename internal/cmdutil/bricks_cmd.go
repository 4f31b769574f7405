package cmdutil

import (
	"fmt"
	"io"
	"strings"

	"github.com/thelfer/tfel-sub013/internal/bricks"
	"github.com/thelfer/tfel-sub013/internal/cli"
	cerr "github.com/thelfer/tfel-sub013/internal/errors"
)

type optionLister interface {
	Options() []bricks.OptionDescription
}

type ruleFamily struct {
	title string
	names []string
	gen   func(name string) (optionLister, error)
}

func familyOf[T any](title string, r *bricks.Registry[T]) ruleFamily {
	return ruleFamily{
		title: title,
		names: r.Names(),
		gen: func(name string) (optionLister, error) {
			rule, err := r.Generate(name)
			if err != nil {
				return nil, err
			}
			ol, ok := any(rule).(optionLister)
			if !ok {
				return nil, fmt.Errorf("%s has no options", name)
			}
			return ol, nil
		},
	}
}

// RunBricks lists the registered rules of every family. When name is set,
// only that rule is shown, with the help of each of its options.
func RunBricks(out io.Writer, r *bricks.Registries, name string) error {
	families := []ruleFamily{
		familyOf("Bricks", r.Bricks),
		familyOf("Inelastic flows", r.InelasticFlows),
		familyOf("Stress criteria", r.StressCriteria),
		familyOf("Isotropic hardening rules", r.IsotropicHardeningRules),
		familyOf("Kinematic hardening rules", r.KinematicHardeningRules),
	}

	if name != "" {
		var all []string
		for _, f := range families {
			for _, n := range f.names {
				if n == name {
					rule, err := f.gen(n)
					if err != nil {
						return err
					}
					fmt.Fprintln(out)
					fmt.Fprintln(out, sectionHeader(f.title+": "+n))
					fmt.Fprintln(out)
					printOptions(out, rule.Options(), true)
					return nil
				}
				all = append(all, n)
			}
		}
		return fmt.Errorf("%w%s", &cerr.UnknownRuleError{Name: name, Family: "rule"}, cerr.DidYouMean(name, all))
	}

	fmt.Fprintln(out)
	for _, f := range families {
		fmt.Fprintln(out, sectionHeader(f.title))
		fmt.Fprintln(out)
		for _, n := range f.names {
			rule, err := f.gen(n)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "  %s\n", cli.Accent(n))
			printOptions(out, rule.Options(), false)
		}
		fmt.Fprintln(out)
	}
	return nil
}

func printOptions(out io.Writer, opts []bricks.OptionDescription, help bool) {
	if len(opts) == 0 {
		fmt.Fprintf(out, "    %s\n", cli.Muted("no options"))
		return
	}
	if !help {
		names := make([]string, len(opts))
		for i, o := range opts {
			names[i] = o.Name
			if o.Optional {
				names[i] += "?"
			}
		}
		fmt.Fprintf(out, "    %s\n", cli.Muted(strings.Join(names, ", ")))
		return
	}
	for _, o := range opts {
		req := "required"
		if o.Optional {
			req = "optional"
		}
		fmt.Fprintf(out, "  %-24s %s\n", o.Name, cli.Muted(fmt.Sprintf("%s, %s. %s", o.Kind, req, o.Help)))
	}
	fmt.Fprintln(out)
}
