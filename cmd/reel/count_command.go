package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reel/internal/frame"
	"reel/internal/services"
)

func newCountCommand(ctx *commandContext) *cobra.Command {
	var flags clipFlags

	cmd := &cobra.Command{
		Use:   "count <file>",
		Short: "Decode a clip through its effects and report how many frames it yields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()
			runCtx := services.WithStage(services.WithClip(cmd.Context(), args[0]), "count")

			p, err := ctx.openPipeline(runCtx, cmd, args[0], flags)
			if err != nil {
				return err
			}
			shape := p.seq.Shape()
			n, err := frame.Count(runCtx, p.seq)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d frames (%s, expected %d)\n", n, shape, p.clip.FrameCap())
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
