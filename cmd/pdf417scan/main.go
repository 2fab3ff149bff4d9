// pdf417scan decodes PDF417 barcodes from image or PDF files, reassembles
// Macro PDF417 multi-symbol payloads, and writes the combined payload to an
// output file.
package main

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/barcoded/pdf417"
	"github.com/barcoded/pdf417/internal/pdfimages"
)

var (
	outputPath string
	pageRange  string
	decompress bool
	tryHarder  bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "pdf417scan [file...]",
	Short: "Decode PDF417 barcodes from images or PDF pages",
	Long: `Decode every PDF417 barcode found in the given image or PDF files.

Macro PDF417 segment sets are reassembled by segment index across all
inputs; plain symbols are concatenated in scan order. The combined payload
is written to the output file, which defaults to <first input>.xml.

Examples:
  pdf417scan page1.png page2.png -o payload.bin
  pdf417scan scan.pdf --pages 1-4 -z`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default: <first input>.xml)")
	rootCmd.Flags().StringVar(&pageRange, "pages", "", "PDF page selection, e.g. '1-5'")
	rootCmd.Flags().BoolVarP(&decompress, "decompress", "z", false, "zlib-decompress the assembled payload")
	rootCmd.Flags().BoolVar(&tryHarder, "try-harder", false, "scan every image row (slower)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	decoder := pdf417.NewDecoderWithOptions(pdf417.Options{TryHarder: tryHarder})
	var plain [][]byte
	var macroFiles []string
	seen := make(map[string]bool)

	for _, input := range args {
		images, err := loadInput(input)
		if err != nil {
			return err
		}
		logger.Debug("loaded input", "file", input, "images", len(images))

		for _, img := range images {
			n, err := decoder.Decode(img)
			if err != nil {
				logger.Warn("decode failed", "file", input, "err", err)
				continue
			}
			for _, failure := range decoder.Failures() {
				logger.Debug("symbol skipped", "file", input, "err", failure)
			}
			for i := 0; i < n; i++ {
				seg := decoder.Segment(i)
				if seg.Macro == nil {
					logger.Debug("plain symbol", "bytes", len(seg.Bytes))
					plain = append(plain, seg.Bytes)
					continue
				}
				fileID, complete, err := decoder.IngestMacro(i)
				if err != nil {
					logger.Warn("macro ingest failed", "err", err)
					continue
				}
				logger.Debug("macro segment",
					"fileID", fileID,
					"segment", seg.Macro.SegmentIndex,
					"complete", complete)
				if !seen[fileID] {
					seen[fileID] = true
					macroFiles = append(macroFiles, fileID)
				}
			}
		}
	}

	payload, err := assemblePayload(decoder, plain, macroFiles, logger)
	if err != nil {
		return err
	}
	if len(payload) == 0 {
		return fmt.Errorf("no barcodes decoded")
	}

	if decompress {
		payload, err = zlibDecompress(payload)
		if err != nil {
			return fmt.Errorf("decompress payload: %w", err)
		}
	}

	out := outputPath
	if out == "" {
		out = defaultOutputPath(args[0])
	}
	if err := os.WriteFile(out, payload, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	logger.Info("payload written", "file", out, "bytes", len(payload))
	return nil
}

// assemblePayload joins macro sets by segment index and plain symbols in
// scan order. An incomplete macro set is an error that names the missing
// pieces.
func assemblePayload(decoder *pdf417.Decoder, plain [][]byte, macroFiles []string, logger *slog.Logger) ([]byte, error) {
	var payload []byte
	for _, fileID := range macroFiles {
		data, err := decoder.AssembleMacro(fileID)
		if err != nil {
			partial, missing, perr := decoder.Assembler().AssemblePartial(fileID, nil)
			if perr != nil {
				return nil, perr
			}
			logger.Warn("macro set incomplete",
				"fileID", fileID, "missing", missing, "partialBytes", len(partial))
			return nil, fmt.Errorf("macro file %s: %w", fileID, err)
		}
		payload = append(payload, data...)
	}
	for _, data := range plain {
		payload = append(payload, data...)
	}
	return payload, nil
}

func loadInput(path string) ([]image.Image, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		var pages []string
		if pageRange != "" {
			pages = []string{pageRange}
		}
		return pdfimages.ExtractImages(path, pages)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}
	return []image.Image{img}, nil
}

func zlibDecompress(data []byte) ([]byte, error) {
	reader, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()
	return io.ReadAll(reader)
}

func defaultOutputPath(firstInput string) string {
	base := strings.TrimSuffix(firstInput, filepath.Ext(firstInput))
	return base + ".xml"
}
