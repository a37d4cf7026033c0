package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bft-labs/lectrec/internal/domain"
)

// intervalFlags holds --begin and --end.
type intervalFlags struct {
	begin time.Duration
	end   time.Duration
}

func (f *intervalFlags) register(cmd *cobra.Command) {
	cmd.Flags().DurationVar(&f.begin, "begin", 0, "start of the interval (e.g. 1m30s)")
	cmd.Flags().DurationVar(&f.end, "end", 0, "end of the interval (e.g. 2m)")
	_ = cmd.MarkFlagRequired("end")
}

func (f *intervalFlags) interval() (domain.Interval, error) {
	return domain.NewInterval(f.begin.Milliseconds(), f.end.Milliseconds())
}

func newCutCommand(e *env) *cobra.Command {
	var iv intervalFlags
	var out string

	cmd := &cobra.Command{
		Use:   "cut FILE",
		Short: "Remove an interval from a recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			interval, err := iv.interval()
			if err != nil {
				return err
			}

			s := e.openSession()
			defer s.close()
			if _, err := s.open(ctx, args[0]); err != nil {
				return err
			}
			if err := s.Cut(interval); err != nil {
				return err
			}
			return s.save(ctx, outputPath(out, args[0]), cmd.ErrOrStderr())
		},
	}
	iv.register(cmd)
	cmd.Flags().StringVarP(&out, "output", "o", "", "write the result here instead of FILE")
	return cmd
}

func newExportCommand(e *env) *cobra.Command {
	var iv intervalFlags
	var out string

	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Write an interval of a recording to a new file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			interval, err := iv.interval()
			if err != nil {
				return err
			}

			s := e.openSession()
			defer s.close()
			if _, err := s.open(ctx, args[0]); err != nil {
				return err
			}
			f, err := s.SavePartialRecording(ctx, out, interval, progressPrinter(cmd.ErrOrStderr(), "export "+out))
			if err != nil {
				return err
			}
			_, err = f.Wait(ctx)
			return err
		},
	}
	iv.register(cmd)
	cmd.Flags().StringVarP(&out, "output", "o", "", "file to write the interval to")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func newSplitCommand(e *env) *cobra.Command {
	var iv intervalFlags
	var out, rest string

	cmd := &cobra.Command{
		Use:   "split FILE",
		Short: "Move an interval of a recording into a new file",
		Long: `Write the interval to --output and remove it from the recording.
The remaining recording is saved to --rest, or back to FILE.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			interval, err := iv.interval()
			if err != nil {
				return err
			}

			s := e.openSession()
			defer s.close()
			if _, err := s.open(ctx, args[0]); err != nil {
				return err
			}
			f, err := s.SplitRecording(ctx, out, interval, progressPrinter(cmd.ErrOrStderr(), "export "+out))
			if err != nil {
				return err
			}
			if _, err := f.Wait(ctx); err != nil {
				return fmt.Errorf("export part: %w", err)
			}
			return s.save(ctx, outputPath(rest, args[0]), cmd.ErrOrStderr())
		},
	}
	iv.register(cmd)
	cmd.Flags().StringVarP(&out, "output", "o", "", "file to write the interval to")
	cmd.Flags().StringVar(&rest, "rest", "", "write the remaining recording here instead of FILE")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func newMoveShapeCommand(e *env) *cobra.Command {
	var (
		page   int
		handle int32
		dx, dy float64
		out    string
	)

	cmd := &cobra.Command{
		Use:   "move-shape FILE",
		Short: "Move a shape and its recorded strokes on a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s := e.openSession()
			defer s.close()
			if _, err := s.open(ctx, args[0]); err != nil {
				return err
			}
			if err := s.ModifyPlaybackActionPositions(page, handle, domain.Point{X: dx, Y: dy}); err != nil {
				return err
			}
			return s.save(ctx, outputPath(out, args[0]), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().IntVar(&page, "page", 0, "page index")
	cmd.Flags().Int32Var(&handle, "handle", 0, "shape handle")
	cmd.Flags().Float64Var(&dx, "dx", 0, "horizontal offset")
	cmd.Flags().Float64Var(&dy, "dy", 0, "vertical offset")
	cmd.Flags().StringVarP(&out, "output", "o", "", "write the result here instead of FILE")
	_ = cmd.MarkFlagRequired("handle")
	return cmd
}

func newDeletePageCommand(e *env) *cobra.Command {
	var (
		page int
		hide bool
		out  string
	)

	cmd := &cobra.Command{
		Use:   "delete-page FILE",
		Short: "Remove a page and the time it is shown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s := e.openSession()
			defer s.close()
			if _, err := s.open(ctx, args[0]); err != nil {
				return err
			}
			remove := s.DeletePage
			if hide {
				remove = s.HidePage
			}
			if err := remove(page); err != nil {
				return err
			}
			return s.save(ctx, outputPath(out, args[0]), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().IntVar(&page, "page", 0, "page index")
	cmd.Flags().BoolVar(&hide, "hide", false, "keep the time the page is shown and its audio")
	cmd.Flags().StringVarP(&out, "output", "o", "", "write the result here instead of FILE")
	_ = cmd.MarkFlagRequired("page")
	return cmd
}

func newImportCommand(e *env) *cobra.Command {
	var (
		at  time.Duration
		out string
	)

	cmd := &cobra.Command{
		Use:   "import FILE SOURCE",
		Short: "Insert another recording into a recording",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s := e.openSession()
			defer s.close()
			if _, err := s.open(ctx, args[0]); err != nil {
				return err
			}
			if err := s.ImportRecording(ctx, at.Milliseconds(), args[1]); err != nil {
				return err
			}
			return s.save(ctx, outputPath(out, args[0]), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().DurationVar(&at, "at", 0, "insert position (e.g. 1m30s)")
	cmd.Flags().StringVarP(&out, "output", "o", "", "write the result here instead of FILE")
	return cmd
}

func newRecentCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "recent",
		Short: "List recently opened recordings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := e.openSession()
			defer s.close()

			list, err := s.RecentRecordings(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, r := range list {
				fmt.Fprintf(w, "%s  %-10s  %s\n",
					r.OpenedAt.Local().Format(time.DateTime),
					time.Duration(r.Duration)*time.Millisecond,
					r.Path)
			}
			return nil
		},
	}
}

func outputPath(out, in string) string {
	if out != "" {
		return out
	}
	return in
}
