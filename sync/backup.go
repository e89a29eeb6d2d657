package sync

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// BackupTimestampFormat names backup files down to the second.
const BackupTimestampFormat = "2006-01-02_15-04-05"

const (
	backupPageIDHeader     = "__page_id"
	backupLastEditedHeader = "__last_edited_time"
)

// WriteBackupCSV writes the full snapshot as a semicolon-delimited CSV.
// The header is the sorted union of every property name seen, plus the
// page id and last-edited audit columns.
func WriteBackupCSV(pages []NotionPage, extract Extractor, w io.Writer) error {
	headerSet := map[string]bool{
		backupPageIDHeader:     true,
		backupLastEditedHeader: true,
	}
	rows := make([]map[string]string, 0, len(pages))
	for _, page := range pages {
		row := map[string]string{
			backupPageIDHeader:     page.ID(),
			backupLastEditedHeader: page.LastEditedTime(),
		}
		for _, name := range page.PropertyNamesInOrder() {
			row[name] = extract.FromAPIProperty(page.Property(name))
			headerSet[name] = true
		}
		rows = append(rows, row)
	}

	headers := make([]string, 0, len(headerSet))
	for header := range headerSet {
		headers = append(headers, header)
	}
	sort.Strings(headers)

	writer := csv.NewWriter(w)
	writer.Comma = ';'
	if err := writer.Write(headers); err != nil {
		return err
	}
	record := make([]string, len(headers))
	for _, row := range rows {
		for i, header := range headers {
			record[i] = row[header]
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// RunBackup snapshots the destination database, writes the CSV backup
// and uploads it to the archival folder. The temporary file is always
// removed. An empty database produces no backup.
func RunBackup(ctx context.Context, pages PageStore, uploader *DriveUploader) error {
	log.Printf("Starting destination database backup")
	snapshot, err := pages.QueryAllPages(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch snapshot for backup %w", err)
	}
	if len(snapshot) == 0 {
		log.Printf("Destination database is empty, no backup generated")
		return nil
	}

	filename := filepath.Join(os.TempDir(),
		fmt.Sprintf("backup_notion_%s.csv", time.Now().Format(BackupTimestampFormat)))
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create backup file %w", err)
	}
	defer os.Remove(filename)

	// backups always join multi-choice values in full
	err = WriteBackupCSV(snapshot, Extractor{MultiSelect: MultiSelectJoined}, file)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("failed to write backup file %w", err)
	}

	id, err := uploader.Upload(ctx, filename)
	if err != nil {
		return err
	}
	log.Printf("Backup uploaded to Google Drive, file id %s", id)
	return nil
}
