package main

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ncc-airhealth/korea-geovariable/internal/border"
	"github.com/ncc-airhealth/korea-geovariable/internal/db"
	"github.com/ncc-airhealth/korea-geovariable/internal/export"
	"github.com/ncc-airhealth/korea-geovariable/internal/frame"
	"github.com/ncc-airhealth/korea-geovariable/internal/point"
)

// calculator is the common surface of border and point variables.
type calculator interface {
	Name() string
	Calculate(ctx context.Context, pool db.Pool) (*frame.Frame, error)
}

var (
	calcBorderType    string
	calcYear          int
	calcBufferSize    int
	calcEmissionType  string
	calcPollutantType string
	calcFormat        string
	calcOut           string
	calcCP949         bool
)

var calcCmd = &cobra.Command{
	Use:   "calc <border|point> <variable>",
	Short: "Run one variable calculation and write the result to a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, variable := args[0], args[1]

		var calc calculator
		switch kind {
		case "border":
			bt, err := border.ParseType(calcBorderType)
			if err != nil {
				return err
			}
			calc, err = border.New(variable, bt, calcYear)
			if err != nil {
				return err
			}
		case "point":
			var err error
			calc, err = point.New(variable, point.Params{
				Year:          calcYear,
				BufferSize:    calcBufferSize,
				EmissionType:  calcEmissionType,
				PollutantType: calcPollutantType,
			})
			if err != nil {
				return err
			}
		default:
			return eris.Errorf("unknown calculation kind %q, valid kinds are: border, point", kind)
		}

		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		f, err := calc.Calculate(cmd.Context(), env.pool)
		if err != nil {
			return err
		}

		if calcOut == "" {
			return f.WriteCSV(os.Stdout)
		}
		if err := writeFrame(f, calcOut, calcFormat); err != nil {
			return err
		}
		zap.L().Info("calculation written",
			zap.String("variable", variable),
			zap.Int("rows", f.Len()),
			zap.String("path", calcOut),
		)
		return nil
	},
}

func writeFrame(f *frame.Frame, path, format string) error {
	switch format {
	case "csv":
		return export.WriteCSVFile(f, path, export.CSVOptions{CP949: calcCP949})
	case "xlsx":
		return export.WriteXLSXFile(f, path, "result")
	case "json":
		return export.WriteJSONFile(f, path)
	default:
		return eris.Errorf("unknown output format %q, valid formats are: csv, xlsx, json", format)
	}
}

func init() {
	calcCmd.Flags().StringVar(&calcBorderType, "border-type", "sgg", "border type for border variables (sgg, emd, jgg)")
	calcCmd.Flags().IntVar(&calcYear, "year", 0, "reference year")
	calcCmd.Flags().IntVar(&calcBufferSize, "buffer-size", 0, "buffer size in meters for point variables")
	calcCmd.Flags().StringVar(&calcEmissionType, "emission-type", "", "emission source type (point, line, area)")
	calcCmd.Flags().StringVar(&calcPollutantType, "pollutant-type", "", "pollutant (co, nox, nh3, voc, pm10, sox, tsp)")
	calcCmd.Flags().StringVar(&calcFormat, "format", "csv", "output format (csv, xlsx, json)")
	calcCmd.Flags().StringVarP(&calcOut, "out", "o", "", "output file path (default stdout, CSV)")
	calcCmd.Flags().BoolVar(&calcCP949, "cp949", false, "encode CSV output as CP949 instead of UTF-8")
	rootCmd.AddCommand(calcCmd)
}
