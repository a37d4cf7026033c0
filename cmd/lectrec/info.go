package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bft-labs/lectrec/internal/domain"
)

type audioView struct {
	SampleRate    uint32 `json:"sample_rate" yaml:"sample_rate"`
	Channels      uint16 `json:"channels" yaml:"channels"`
	BitsPerSample uint16 `json:"bits_per_sample" yaml:"bits_per_sample"`
	DurationMS    int64  `json:"duration_ms" yaml:"duration_ms"`
}

type infoView struct {
	Path       string         `json:"path" yaml:"path"`
	ID         string         `json:"id" yaml:"id"`
	Created    time.Time      `json:"created" yaml:"created"`
	Version    uint32         `json:"version" yaml:"version"`
	DurationMS int64          `json:"duration_ms" yaml:"duration_ms"`
	Pages      int            `json:"pages" yaml:"pages"`
	Shapes     int            `json:"shapes" yaml:"shapes"`
	Actions    map[string]int `json:"actions" yaml:"actions"`
	Audio      *audioView     `json:"audio,omitempty" yaml:"audio,omitempty"`
	StateHash  string         `json:"state_hash" yaml:"state_hash"`
}

func newInfoView(path string, rec *domain.Recording) infoView {
	h := rec.Header()
	v := infoView{
		Path:       path,
		ID:         h.ID.String(),
		Created:    h.Created,
		Version:    h.Version,
		DurationMS: rec.Duration(),
		Pages:      rec.PageCount(),
		Actions:    make(map[string]int),
		StateHash:  fmt.Sprintf("%016x", rec.StateHash()),
	}
	for _, p := range rec.Pages() {
		v.Shapes += p.ShapeCount()
	}
	for _, a := range rec.Actions() {
		v.Actions[a.Type.String()]++
	}
	if a := rec.Audio(); !a.Empty() {
		v.Audio = &audioView{
			SampleRate:    a.Format.SampleRate,
			Channels:      a.Format.Channels,
			BitsPerSample: a.Format.BitsPerSample,
			DurationMS:    a.DurationMillis(),
		}
	}
	return v
}

func (v infoView) writeText(w io.Writer) {
	fmt.Fprintf(w, "path:       %s\n", v.Path)
	fmt.Fprintf(w, "id:         %s\n", v.ID)
	fmt.Fprintf(w, "created:    %s\n", v.Created.Local().Format(time.DateTime))
	fmt.Fprintf(w, "version:    %d\n", v.Version)
	fmt.Fprintf(w, "duration:   %s\n", time.Duration(v.DurationMS)*time.Millisecond)
	fmt.Fprintf(w, "pages:      %d (%d shapes)\n", v.Pages, v.Shapes)
	total := 0
	for _, n := range v.Actions {
		total += n
	}
	fmt.Fprintf(w, "actions:    %d\n", total)
	if v.Audio != nil {
		fmt.Fprintf(w, "audio:      %d Hz, %d ch, %d bit, %s\n",
			v.Audio.SampleRate, v.Audio.Channels, v.Audio.BitsPerSample,
			time.Duration(v.Audio.DurationMS)*time.Millisecond)
	} else {
		fmt.Fprintln(w, "audio:      none")
	}
	fmt.Fprintf(w, "state hash: %s\n", v.StateHash)
}

func newInfoCommand(e *env) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "info FILE",
		Short: "Show the contents of a recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := e.openSession()
			defer s.close()

			rec, err := s.open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			v := newInfoView(args[0], rec)
			w := cmd.OutOrStdout()

			switch format {
			case "text":
				v.writeText(w)
				return nil
			case "json":
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(v)
			case "yaml":
				enc := yaml.NewEncoder(w)
				enc.SetIndent(2)
				if err := enc.Encode(v); err != nil {
					return err
				}
				return enc.Close()
			default:
				return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json or yaml")
	return cmd
}
