// Package util - Input directory scanning.
package util

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ImageFile represents an image file discovered in an input directory.
type ImageFile struct {
	// Path is the full path to the image file.
	Path string
	// Name is the file's base name, used to derive the output name.
	Name string
}

// supportedImageExtensions are the file extensions scanned for.
var supportedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
}

// LoadDirectoryImageFiles lists all image files in a directory, sorted by
// file name for a deterministic processing order.
//
// Arguments:
//   - dir: Directory path containing image files.
//
// Returns:
//   - []ImageFile: One entry per supported image file.
//   - error: Error if the directory cannot be read.
func LoadDirectoryImageFiles(dir string) ([]ImageFile, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var images []ImageFile
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(file.Name()))
		if !supportedImageExtensions[ext] {
			continue
		}
		images = append(images, ImageFile{
			Path: filepath.Join(dir, file.Name()),
			Name: file.Name(),
		})
	}

	sort.Slice(images, func(i, j int) bool {
		return images[i].Name < images[j].Name
	})

	return images, nil
}
