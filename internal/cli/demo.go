package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/modelkit/examples/users"
	"github.com/roach88/modelkit/pkg/model"
	"github.com/roach88/modelkit/pkg/value"
)

// DemoResult captures each observation the demo makes.
type DemoResult struct {
	UserName        string `json:"user_name"`
	Admin           bool   `json:"admin"`
	JSON            string `json:"json"`
	UnknownSetError string `json:"unknown_set_error"`
	ExpirationDate  string `json:"expiration_date"`
	FullNameBefore  string `json:"full_name_before"`
	FullNameAfter   string `json:"full_name_after"`
	CachedFirst     string `json:"cached_first"`
	CachedSecond    string `json:"cached_second"`
}

// NewDemoCommand creates the demo command.
func NewDemoCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Walk through the generated users.User entity",
		Long: `Build a users.User and exercise it: typed reads from both namespaces,
canonical JSON, a rejected write to an undeclared attribute, derived
properties and a cached property.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(rootOpts, cmd)
		},
	}
}

func demoRaw() model.Raw {
	return model.Raw{
		Persisted: value.Object{
			"userName":  value.String("Test"),
			"firstName": value.String("Test"),
			"lastName":  value.String("Test"),
			"age":       value.Int(5),
			"expires":   value.String("2020-04-30T00:00:00-04:00"),
		},
		Transient: value.Object{
			"admin": value.Bool(true),
		},
	}
}

// RunDemo performs the walkthrough, writing progress lines to w.
func RunDemo(w io.Writer, opts ...model.Option) (*DemoResult, error) {
	u, err := users.NewUser(demoRaw(), opts...)
	if err != nil {
		return nil, err
	}

	var r DemoResult
	fmt.Fprintln(w, "-------- General implementation -----------")
	if r.UserName, err = u.UserName(); err != nil {
		return nil, err
	}
	if r.Admin, err = u.Admin(); err != nil {
		return nil, err
	}
	r.JSON = u.DisplayString()
	fmt.Fprintln(w, "Persisted attribute userName:", r.UserName)
	fmt.Fprintln(w, "Transient attribute admin:", r.Admin)
	fmt.Fprintln(w, "JSON:", r.JSON)

	setErr := u.Set("newProperty", value.Int(5))
	if setErr == nil {
		return nil, fmt.Errorf("write to undeclared attribute succeeded on a sealed entity")
	}
	r.UnknownSetError = setErr.Error()
	fmt.Fprintln(w, "Undeclared write rejected:", r.UnknownSetError)

	fmt.Fprintln(w, "-------- Derived properties -----------")
	if r.ExpirationDate, err = u.ExpirationDateString(); err != nil {
		return nil, err
	}
	fmt.Fprintln(w, "Expiration date:", r.ExpirationDate)
	r.FullNameBefore = u.FullName()
	fmt.Fprintf(w, "Full name %q\n", r.FullNameBefore)
	if err := u.SetFirstName("Samuil"); err != nil {
		return nil, err
	}
	if err := u.SetLastName("Gospodinov"); err != nil {
		return nil, err
	}
	r.FullNameAfter = u.FullName()
	fmt.Fprintf(w, "Full name after rename %q\n", r.FullNameAfter)

	fmt.Fprintln(w, "-------- Cached properties -----------")
	r.CachedFirst = u.CachedDerivedProperty()
	fmt.Fprintf(w, "Cached property, first access %q\n", r.CachedFirst)
	r.CachedSecond = u.CachedDerivedProperty()
	fmt.Fprintf(w, "Cached property, from cache %q\n", r.CachedSecond)

	return &r, nil
}

func runDemo(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	w := formatter.Writer
	if formatter.Format == "json" {
		w = io.Discard
	}

	result, err := RunDemo(w, model.WithLogger(opts.logger()))
	if err != nil {
		_ = formatter.Fail(err, ErrCodeGeneric)
		return WrapExitError(ExitFailure, "demo failed", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	return nil
}
