package cli

import (
	"context"
	"fmt"
)

// --- Bootloader Commands ---

type FlashCmd struct {
	Partition string `arg:"" help:"Partition name, for example boot or recovery"`
	Image     string `arg:"" type:"existingfile" help:"Image file"`
}

func (f *FlashCmd) Run(ctx context.Context, globals *CLI) (err error) {
	s, err := globals.open(ctx, false)
	if err != nil {
		return err
	}
	defer closeServices(s, &err)

	if err := s.Client.FlashPartition(ctx, f.Partition, f.Image); err != nil {
		return err
	}
	fmt.Fprintf(globals.out(), "flashed %s to %s\n", f.Image, f.Partition)
	return nil
}

type WipeCmd struct {
	Yes bool `short:"y" help:"Confirm erasing all user data"`
}

func (w *WipeCmd) Run(ctx context.Context, globals *CLI) (err error) {
	if !w.Yes {
		return fmt.Errorf("wipe erases all user data: %w", errConfirmRequired)
	}
	s, err := globals.open(ctx, false)
	if err != nil {
		return err
	}
	defer closeServices(s, &err)

	if err := s.Client.WipeData(ctx); err != nil {
		return err
	}
	fmt.Fprintln(globals.out(), "user data wiped")
	return nil
}

type SideloadCmd struct {
	Package string `arg:"" type:"existingfile" help:"OTA package"`
}

func (sl *SideloadCmd) Run(ctx context.Context, globals *CLI) (err error) {
	s, err := globals.open(ctx, false)
	if err != nil {
		return err
	}
	defer closeServices(s, &err)

	out, err := s.Client.Sideload(ctx, sl.Package)
	if err != nil {
		return err
	}
	fmt.Fprintln(globals.out(), lastLine(out, "sideloaded "+sl.Package))
	return nil
}
