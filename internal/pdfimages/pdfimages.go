// Package pdfimages extracts embedded page images from PDF files so
// barcode pages scanned to PDF can be decoded like plain image files.
package pdfimages

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ExtractImages pulls every embedded image out of the PDF, in page order.
// pages limits extraction when non-empty, using pdfcpu's page selection
// syntax ("1-5", "3").
func ExtractImages(filename string, pages []string) ([]image.Image, error) {
	tempDir, err := os.MkdirTemp("", "pdf417-extract-*")
	if err != nil {
		return nil, fmt.Errorf("create temp directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	if err := api.ExtractImagesFile(filename, tempDir, pages, nil); err != nil {
		return nil, fmt.Errorf("extract images from %s: %w", filename, err)
	}
	return loadDirectory(tempDir)
}

// loadDirectory decodes every extracted file, sorted by name. pdfcpu names
// extracted images by page and object number, so name order is page order.
func loadDirectory(dir string) ([]image.Image, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var images []image.Image
	for _, name := range names {
		img, err := loadImageFile(filepath.Join(dir, name))
		if err != nil {
			// skip non-image artifacts such as extracted masks
			continue
		}
		images = append(images, img)
	}
	return images, nil
}

func loadImageFile(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()
	img, _, err := image.Decode(file)
	return img, err
}
