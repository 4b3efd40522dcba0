package api

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// MaxUploadSize 与服务端限制一致。
const MaxUploadSize = 16 << 20

// ExpectedColumns 是上传 CSV 的列定义，文件无表头时按此顺序解析。
var ExpectedColumns = []string{
	"rec_id", "uni_id", "uni_name", "dept_id", "dept_name", "description",
	"rec_url", "date_created", "date_modified", "user_rating", "tags", "rec_content",
}

const (
	colUniName    = 2
	colRecContent = 11
)

// UploadInfo 是本地校验得到的文件概况。
type UploadInfo struct {
	Size       int64
	Rows       int
	University string
}

// ValidateUpload 检查扩展名、大小与列结构，避免上传注定被拒绝的文件。
func ValidateUpload(path string) (UploadInfo, error) {
	var info UploadInfo
	if strings.TrimSpace(path) == "" {
		return info, errors.New("no file provided")
	}
	if !strings.EqualFold(filepath.Ext(path), ".csv") {
		return info, errors.New("only CSV files are allowed")
	}
	st, err := os.Stat(path)
	if err != nil {
		return info, err
	}
	if st.IsDir() {
		return info, fmt.Errorf("%s is a directory", path)
	}
	if st.Size() == 0 {
		return info, errors.New("CSV file is empty")
	}
	if st.Size() > MaxUploadSize {
		return info, fmt.Errorf("file is %d bytes, limit is %d", st.Size(), MaxUploadSize)
	}
	info.Size = st.Size()

	f, err := os.Open(path)
	if err != nil {
		return info, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	var hasName, hasContent bool
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return info, fmt.Errorf("invalid CSV structure: %w", err)
		}
		if info.Rows == 0 && len(rec) != len(ExpectedColumns) {
			return info, fmt.Errorf("invalid CSV structure: expected %d columns, got %d", len(ExpectedColumns), len(rec))
		}
		info.Rows++
		if len(rec) != len(ExpectedColumns) || isHeader(rec) {
			continue
		}
		if name := strings.TrimSpace(rec[colUniName]); name != "" {
			hasName = true
			if info.University == "" {
				info.University = name
			}
		}
		if strings.TrimSpace(rec[colRecContent]) != "" {
			hasContent = true
		}
	}
	switch {
	case info.Rows == 0:
		return info, errors.New("CSV file is empty")
	case !hasName:
		return info, errors.New("university name column is empty")
	case !hasContent:
		return info, errors.New("content column is empty")
	}
	return info, nil
}

func isHeader(rec []string) bool {
	return strings.EqualFold(strings.TrimSpace(rec[colUniName]), ExpectedColumns[colUniName])
}
