// Package main provides the Pyramid command-line interface.
package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/born-ml/pyramid/backend/cpu"
	"github.com/born-ml/pyramid/fpn"
	"github.com/born-ml/pyramid/nn"
	"github.com/born-ml/pyramid/tensor"
)

const version = "v0.1.0-dev"

type pyramidOptions struct {
	inChannels  int
	outChannels int
	channels    []int
	strides     []int
	norm        string
	fuse        string
	topBlock    bool
}

func (o *pyramidOptions) build(backend *cpu.Backend) (*fpn.FPN[*cpu.Backend], error) {
	if len(o.channels) != len(o.strides) {
		return nil, fmt.Errorf("--channels and --strides must have the same length (got %d and %d)",
			len(o.channels), len(o.strides))
	}

	levels := make([]fpn.SyntheticLevel, len(o.strides))
	inFeatures := make([]string, len(o.strides))
	for i, stride := range o.strides {
		name := fmt.Sprintf("res%d", i+2)
		levels[i] = fpn.SyntheticLevel{Name: name, Channels: o.channels[i], Stride: stride}
		inFeatures[i] = name
	}

	backbone, err := fpn.NewSyntheticBackbone(o.inChannels, levels, backend)
	if err != nil {
		return nil, err
	}

	var fuse fpn.FuseMode
	switch o.fuse {
	case "sum":
		fuse = fpn.FuseSum
	case "avg":
		fuse = fpn.FuseAvg
	default:
		return nil, fmt.Errorf("unknown fuse mode %q (want sum or avg)", o.fuse)
	}

	var topBlock fpn.TopBlock[*cpu.Backend]
	if o.topBlock {
		coarsest := levels[len(levels)-1]
		stage := 0
		for s := coarsest.Stride; s > 1; s >>= 1 {
			stage++
		}
		topBlock = fpn.NewLastLevelMaxPool(fmt.Sprintf("p%d", stage), backend)
	}

	return fpn.NewFPN(backbone, inFeatures, o.outChannels, o.norm, topBlock, fuse, backend)
}

func (o *pyramidOptions) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&o.inChannels, "in-channels", 3, "Input image channels")
	cmd.Flags().IntVar(&o.outChannels, "out-channels", 256, "Pyramid output channels")
	cmd.Flags().IntSliceVar(&o.channels, "channels", []int{64, 128, 256}, "Backbone channels per level")
	cmd.Flags().IntSliceVar(&o.strides, "strides", []int{4, 8, 16}, "Backbone strides per level")
	cmd.Flags().StringVar(&o.norm, "norm", nn.NormNone, `Normalization ("" or "BN")`)
	cmd.Flags().StringVar(&o.fuse, "fuse", "sum", "Top-down fusion mode (sum or avg)")
	cmd.Flags().BoolVar(&o.topBlock, "top-block", false, "Append a max-pool top level")
}

func sortedFeatures(shapes map[string]fpn.ShapeSpec) []string {
	names := make([]string, 0, len(shapes))
	for name := range shapes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newShapesCmd() *cobra.Command {
	opts := &pyramidOptions{}

	cmd := &cobra.Command{
		Use:   "shapes",
		Short: "Print the static output shapes of a pyramid configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pyramid, err := opts.build(cpu.New())
			if err != nil {
				return err
			}

			shapes := pyramid.OutputShape()
			for _, name := range sortedFeatures(shapes) {
				spec := shapes[name]
				fmt.Printf("%-4s channels=%-4d stride=%d\n", name, spec.Channels, spec.Stride)
			}
			fmt.Printf("size divisibility: %d\n", pyramid.SizeDivisibility())
			return nil
		},
	}

	opts.register(cmd)
	return cmd
}

func newForwardCmd() *cobra.Command {
	opts := &pyramidOptions{}
	var (
		imageSize int
		batch     int
		runFTT    bool
	)

	cmd := &cobra.Command{
		Use:   "forward",
		Short: "Run a forward pass on random input and print output shapes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend := cpu.New()
			pyramid, err := opts.build(backend)
			if err != nil {
				return err
			}

			if div := pyramid.SizeDivisibility(); imageSize%div != 0 {
				return fmt.Errorf("--size %d is not divisible by the pyramid's size divisibility %d",
					imageSize, div)
			}

			input := tensor.Randn[float32](
				tensor.Shape{batch, opts.inChannels, imageSize, imageSize}, backend)
			outputs, err := pyramid.Forward(input)
			if err != nil {
				return err
			}

			for _, name := range pyramid.OutFeatures() {
				fmt.Printf("%-4s %v\n", name, outputs[name].Shape())
			}

			if !runFTT {
				return nil
			}

			shapes := pyramid.OutputShape()
			p2, ok2 := shapes["p2"]
			p3, ok3 := shapes["p3"]
			if !ok2 || !ok3 {
				return fmt.Errorf("texture transfer needs p2 and p3 levels (have %s)",
					strings.Join(pyramid.OutFeatures(), ", "))
			}

			ftt, err := fpn.NewFTT(p2, p3, opts.norm, 0, backend)
			if err != nil {
				return err
			}
			samples, err := ftt.Forward(outputs["p2"], outputs["p3"])
			if err != nil {
				return err
			}
			for i, sample := range samples {
				fmt.Printf("ftt[%d] %v\n", i, sample.Shape())
			}
			return nil
		},
	}

	opts.register(cmd)
	cmd.Flags().IntVar(&imageSize, "size", 64, "Square input image size")
	cmd.Flags().IntVar(&batch, "batch", 1, "Input batch size")
	cmd.Flags().BoolVar(&runFTT, "ftt", false, "Also run feature texture transfer on p2/p3")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Pyramid %s\n", version)
		},
	}
}

func newCLI() *cobra.Command {
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:           "pyramid",
		Short:         "Feature pyramid networks for Go",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		Run: func(cmd *cobra.Command, args []string) {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Printf("Pyramid %s\n", version)
				return
			}
			cmd.Print(cmd.UsageString())
		},
	}

	rootCmd.Flags().BoolP("version", "v", false, "Show version information")
	rootCmd.AddCommand(
		newShapesCmd(),
		newForwardCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

func main() {
	if err := newCLI().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
