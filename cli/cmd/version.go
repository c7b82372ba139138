package cmd

import (
	"context"
	"fmt"

	"github.com/Devenc042/MyZeDeDup/pkg"
)

// Version prints the program version.
type Version struct{}

// Run executes the version command.
func (Version) Run(ctx context.Context) error {
	_, err := fmt.Fprintln(stdioFrom(ctx).Out, pkg.Name, pkg.Version)

	return err
}
