package cmd

import (
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/getcreddy/humanhash/pkg/humanhash"
	"github.com/getcreddy/humanhash/pkg/source"
)

var encodeCmd = &cobra.Command{
	Use:   "encode [input...]",
	Short: "Turn input into a human-readable label",
	Long: `Encode each argument with the selected format. Without arguments the
whole of stdin is one input. --random and --uuid need no input.

Examples:
  humanhash encode alice@example.com --hash-alg sha256
  humanhash encode --kind int 1337 --template "{{noun}}-{{decimal 3}}"
  humanhash encode --random --count 5 --format docker`,
	RunE: runEncode,
}

var (
	encodeFormat     string
	encodeTemplate   string
	encodeHashAlg    string
	encodeSalt       string
	encodeKind       string
	encodeRandom     bool
	encodeUUID       bool
	encodeCount      int
	encodeUnhashSafe bool
	encodeRecord     bool
	encodeSource     string
)

func init() {
	rootCmd.AddCommand(encodeCmd)
	addFormatFlags(encodeCmd, &encodeFormat, &encodeTemplate)
	encodeCmd.Flags().StringVar(&encodeHashAlg, "hash-alg", "", "Digest the input first ("+fmt.Sprint(source.Digests())+")")
	encodeCmd.Flags().StringVar(&encodeSalt, "salt", "", "Salt prefixed to the input before digesting")
	encodeCmd.Flags().StringVar(&encodeKind, "kind", source.KindString, "How to read input: string, hex, int or uuid")
	encodeCmd.Flags().BoolVar(&encodeRandom, "random", false, "Encode random bytes")
	encodeCmd.Flags().BoolVar(&encodeUUID, "uuid", false, "Encode a new random UUID and print it next to the label")
	encodeCmd.Flags().IntVarP(&encodeCount, "count", "n", 1, "Number of labels with --random or --uuid")
	encodeCmd.Flags().BoolVar(&encodeUnhashSafe, "unhash-safe", false, "Normalise dictionary entries so labels decode reliably")
	encodeCmd.Flags().BoolVar(&encodeRecord, "record", false, "Record issued labels in the label database")
	encodeCmd.Flags().StringVar(&encodeSource, "source", "", "Reference stored with recorded labels (defaults to the input)")
}

func addFormatFlags(cmd *cobra.Command, format, template *string) {
	cmd.Flags().StringVarP(format, "format", "f", "", "Named format (default \"default\")")
	cmd.Flags().StringVarP(template, "template", "t", "", "Ad-hoc template, overrides --format")
}

// encodeJob is one label to produce. note is printed after the label.
type encodeJob struct {
	src    *source.Source
	source string
	note   string
}

func runEncode(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	defer env.Close()

	var opts []humanhash.Option
	if encodeUnhashSafe {
		opts = append(opts, humanhash.WithUnhashSafe(true))
	}
	h, err := env.hasher(encodeFormat, encodeTemplate, opts...)
	if err != nil {
		return err
	}

	jobs, err := encodeJobs(h, args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	var rec *recorder
	if encodeRecord {
		if rec, err = newRecorder(formatName(encodeFormat, encodeTemplate)); err != nil {
			return err
		}
		defer rec.Close()
	}

	out := cmd.OutOrStdout()
	for _, job := range jobs {
		value := new(big.Int).Mod(job.src.Value(), h.Entropy())
		label, err := h.Encode(job.src)
		if err != nil {
			return err
		}
		if rec != nil {
			if err := rec.record(label, value, job.source); err != nil {
				return err
			}
		}
		if job.note != "" {
			fmt.Fprintf(out, "%s\t%s\n", label, job.note)
		} else {
			fmt.Fprintln(out, label)
		}
	}
	return nil
}

func encodeJobs(h *humanhash.Hasher, args []string, stdin io.Reader) ([]encodeJob, error) {
	var sourceOpts []source.Option
	if encodeHashAlg != "" {
		sourceOpts = append(sourceOpts, source.WithDigest(encodeHashAlg))
	}
	if encodeSalt != "" {
		sourceOpts = append(sourceOpts, source.WithSalt([]byte(encodeSalt)))
	}

	var jobs []encodeJob
	switch {
	case encodeRandom || encodeUUID:
		if len(args) > 0 {
			return nil, fmt.Errorf("--random and --uuid take no input")
		}
		if encodeCount < 1 {
			return nil, fmt.Errorf("--count must be at least 1")
		}
		for i := 0; i < encodeCount; i++ {
			if encodeUUID {
				id := uuid.New()
				src, err := h.Source(id, sourceOpts...)
				if err != nil {
					return nil, err
				}
				jobs = append(jobs, encodeJob{src: src, source: id.String(), note: id.String()})
				continue
			}
			src, err := source.Random(h.ByteLen() + 8)
			if err != nil {
				return nil, err
			}
			jobs = append(jobs, encodeJob{src: src})
		}

	case len(args) == 0:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		input, err := source.ParseInput(encodeKind, strings.TrimRight(string(data), "\r\n"))
		if err != nil {
			return nil, err
		}
		src, err := h.Source(input, sourceOpts...)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, encodeJob{src: src, source: sourceRef("")})

	default:
		for _, arg := range args {
			input, err := source.ParseInput(encodeKind, arg)
			if err != nil {
				return nil, err
			}
			src, err := h.Source(input, sourceOpts...)
			if err != nil {
				return nil, err
			}
			jobs = append(jobs, encodeJob{src: src, source: sourceRef(arg)})
		}
	}
	return jobs, nil
}

func sourceRef(input string) string {
	if encodeSource != "" {
		return encodeSource
	}
	return input
}

