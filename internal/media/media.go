package media

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/webp"
)

var ErrInvalidName = errors.New("invalid media name")

// Library 负责把文章引用的媒体文件名映射到上传目录与公开 URL。
type Library struct {
	dir     string
	urlPath string
}

// Dimensions 描述图片的像素尺寸
type Dimensions struct {
	Width  int
	Height int
}

// NewLibrary creates a Library serving files from dir under urlPath.
func NewLibrary(dir, urlPath string) *Library {
	urlPath = "/" + strings.Trim(strings.TrimSpace(urlPath), "/")
	return &Library{dir: strings.TrimSpace(dir), urlPath: urlPath}
}

// URL returns the public URL of a stored media name, or "" when the name is
// empty or escapes the upload directory.
func (l *Library) URL(name string) string {
	clean, err := cleanName(name)
	if err != nil {
		return ""
	}

	segments := strings.Split(clean, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}

	return path.Join(l.urlPath, strings.Join(segments, "/"))
}

// Dimensions 读取图片头信息获取宽高，不解码完整像素数据。
func (l *Library) Dimensions(name string) (Dimensions, error) {
	clean, err := cleanName(name)
	if err != nil {
		return Dimensions{}, err
	}

	file, err := os.Open(filepath.Join(l.dir, filepath.FromSlash(clean)))
	if err != nil {
		return Dimensions{}, err
	}
	defer file.Close()

	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		return Dimensions{}, fmt.Errorf("decode %s: %w", clean, err)
	}

	return Dimensions{Width: cfg.Width, Height: cfg.Height}, nil
}

func cleanName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrInvalidName
	}

	clean := path.Clean(strings.ReplaceAll(trimmed, "\\", "/"))
	if !filepath.IsLocal(filepath.FromSlash(clean)) {
		return "", ErrInvalidName
	}
	return clean, nil
}
