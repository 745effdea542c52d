package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/five82/handset/internal/bridge"
)

// --- Package Commands ---

type InstallCmd struct {
	Package string `arg:"" type:"existingfile" help:"Application package file"`
}

func (i *InstallCmd) Run(ctx context.Context, globals *CLI) (err error) {
	s, err := globals.open(ctx, false)
	if err != nil {
		return err
	}
	defer closeServices(s, &err)

	out, err := s.Client.InstallPackage(ctx, i.Package)
	if err != nil {
		return err
	}
	fmt.Fprintln(globals.out(), lastLine(out, "installed "+i.Package))
	return nil
}

type UninstallCmd struct {
	Name string `arg:"" help:"Package name, for example com.example.app"`
}

func (u *UninstallCmd) Run(ctx context.Context, globals *CLI) (err error) {
	s, err := globals.open(ctx, false)
	if err != nil {
		return err
	}
	defer closeServices(s, &err)

	out, err := s.Client.UninstallPackage(ctx, u.Name)
	if err != nil {
		return err
	}
	if strings.Contains(out, "Failure") {
		return fmt.Errorf("uninstall %s: %s", u.Name, out)
	}
	fmt.Fprintln(globals.out(), lastLine(out, "uninstalled "+u.Name))
	return nil
}

type PackagesCmd struct {
	Query string `arg:"" optional:"" help:"Fuzzy filter on the package name"`
	Paths bool   `help:"Show the package file path"`
}

func (p *PackagesCmd) Run(ctx context.Context, globals *CLI) (err error) {
	s, err := globals.open(ctx, false)
	if err != nil {
		return err
	}
	defer closeServices(s, &err)

	pkgs, err := s.Client.ListPackages(ctx)
	if err != nil {
		return err
	}
	pkgs = bridge.FilterPackages(pkgs, p.Query)
	tw := globals.table()
	for _, pkg := range pkgs {
		if p.Paths {
			fmt.Fprintf(tw, "%s\t%s\n", pkg.Name, pkg.Path)
			continue
		}
		fmt.Fprintln(tw, pkg.Name)
	}
	return tw.Flush()
}

// lastLine returns the final non-empty line of tool output, or fallback.
func lastLine(out, fallback string) string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return fallback
}
