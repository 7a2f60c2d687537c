package client

import (
	"strconv"
	"strings"
)

// Icon is the display token a file renders with.
type Icon string

const (
	IconImage        Icon = "image"
	IconVideo        Icon = "video"
	IconAudio        Icon = "audio"
	IconPDF          Icon = "pdf"
	IconWord         Icon = "word"
	IconSpreadsheet  Icon = "spreadsheet"
	IconPresentation Icon = "presentation"
	IconGeneric      Icon = "generic"
)

// Classification is the result of classifying one file: the resolved
// content type, whether an inline preview is possible, and the icon token.
type Classification struct {
	ContentType string
	Previewable bool
	Icon        Icon
}

// extensionMIME maps lowercase extensions to content types. Unknown
// extensions resolve to "".
var extensionMIME = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"bmp":  "image/bmp",
	"svg":  "image/svg+xml",
	"mp4":  "video/mp4",
	"webm": "video/webm",
	"ogv":  "video/ogg",
	"avi":  "video/x-msvideo",
	"mov":  "video/quicktime",
	"mkv":  "video/x-matroska",
	"pdf":  "application/pdf",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"xls":  "application/vnd.ms-excel",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"ppt":  "application/vnd.ms-powerpoint",
	"pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"mp3":  "audio/mpeg",
	"wav":  "audio/wav",
	"m4a":  "audio/mp4",
	"aac":  "audio/aac",
	"flac": "audio/flac",
	"ogg":  "audio/ogg",
	"opus": "audio/ogg",
}

// previewableExtensions mirrors the previewable content-type categories for
// files whose content type could not be resolved at all.
var previewableExtensions = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true, "webp": true,
	"bmp": true, "svg": true,
	"mp4": true, "webm": true, "ogv": true, "ogg": true, "avi": true,
	"mov": true, "mkv": true,
	"mp3": true, "wav": true, "m4a": true, "aac": true, "flac": true,
	"opus": true,
	"pdf": true,
}

func extensionOf(fileName string) string {
	idx := strings.LastIndex(fileName, ".")
	if idx < 0 || idx == len(fileName)-1 {
		return ""
	}
	return strings.ToLower(fileName[idx+1:])
}

// ResolveContentType returns the declared type verbatim when non-empty,
// otherwise the extension table's answer, otherwise "".
func ResolveContentType(fileName, declaredType string) string {
	if t := strings.TrimSpace(declaredType); t != "" {
		return t
	}
	return extensionMIME[extensionOf(fileName)]
}

func isPreviewable(contentType, fileName string) bool {
	if strings.HasPrefix(contentType, "image/") ||
		strings.HasPrefix(contentType, "video/") ||
		strings.HasPrefix(contentType, "audio/") ||
		contentType == "application/pdf" {
		return true
	}
	if contentType == "" && fileName != "" {
		return previewableExtensions[extensionOf(fileName)]
	}
	return false
}

func matchExt(ext string, candidates ...string) bool {
	for _, c := range candidates {
		if ext == c {
			return true
		}
	}
	return false
}

// iconFor picks the display icon. Fixed priority: image, video, audio,
// pdf, word, spreadsheet, presentation, then the generic fallback.
func iconFor(contentType, fileName string) Icon {
	ext := extensionOf(strings.ToLower(fileName))

	switch {
	case strings.HasPrefix(contentType, "image/") || matchExt(ext, "jpg", "jpeg", "png", "gif", "webp", "bmp", "svg"):
		return IconImage
	case strings.HasPrefix(contentType, "video/") || matchExt(ext, "mp4", "webm", "ogv", "ogg", "avi", "mov", "mkv"):
		return IconVideo
	case strings.HasPrefix(contentType, "audio/") || matchExt(ext, "mp3", "wav", "m4a", "aac", "flac", "opus"):
		return IconAudio
	case contentType == "application/pdf" || ext == "pdf":
		return IconPDF
	case strings.Contains(contentType, "word") || strings.Contains(contentType, "document") || matchExt(ext, "doc", "docx"):
		return IconWord
	case strings.Contains(contentType, "spreadsheet") || strings.Contains(contentType, "excel") || matchExt(ext, "xls", "xlsx"):
		return IconSpreadsheet
	case strings.Contains(contentType, "presentation") || strings.Contains(contentType, "powerpoint") || matchExt(ext, "ppt", "pptx"):
		return IconPresentation
	default:
		return IconGeneric
	}
}

// Classify resolves a file's content type, preview capability and icon
// from its name and declared type. Pure: identical input always yields an
// identical result, so callers may invoke it on every render.
func Classify(fileName, declaredType string) Classification {
	contentType := ResolveContentType(fileName, declaredType)
	return Classification{
		ContentType: contentType,
		Previewable: isPreviewable(contentType, fileName),
		Icon:        iconFor(contentType, fileName),
	}
}

// ClassifyFile classifies a normalized file payload.
func ClassifyFile(file map[string]any) Classification {
	return Classify(FileName(file), FileContentType(file))
}

// FormatFileSize renders a byte count the way the dashboards show it.
func FormatFileSize(bytes int64) string {
	switch {
	case bytes < 1024:
		return strconv.FormatInt(bytes, 10) + " B"
	case bytes < 1024*1024:
		return strconv.FormatFloat(float64(bytes)/1024, 'f', 2, 64) + " KB"
	default:
		return strconv.FormatFloat(float64(bytes)/(1024*1024), 'f', 2, 64) + " MB"
	}
}
