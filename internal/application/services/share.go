package services

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"filesharing-api/config"
	"filesharing-api/internal/application/ports"
	domain "filesharing-api/internal/domain/filegroup"
)

const maxBaseNameLen = 100

var (
	fileSafeRe    = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
	leadingDotsRe = regexp.MustCompile(`^\.+`)
)

type ShareService struct {
	blobs    ports.BlobStore
	fgRepo   domain.Repository
	notifier ports.ExpiryNotifier
	limits   config.Limits
	logger   *zap.Logger
	mCounter *prometheus.CounterVec
	clockNow func() time.Time
}

func NewShareService(
	blobs ports.BlobStore,
	fgRepo domain.Repository,
	notifier ports.ExpiryNotifier,
	limits config.Limits,
	logger *zap.Logger,
	mCounter *prometheus.CounterVec,
) ports.ShareService {
	return &ShareService{
		blobs:    blobs,
		fgRepo:   fgRepo,
		notifier: notifier,
		limits:   limits,
		logger:   logger,
		mCounter: mCounter,
		clockNow: time.Now,
	}
}

// CreateFileGroup uploads every blob first and persists the metadata record
// only once all of them landed, so a partial upload never leaves a dangling
// record. Any failure rolls the already-uploaded blobs back best-effort.
func (ss *ShareService) CreateFileGroup(
	ctx context.Context,
	files []*multipart.FileHeader,
	ttl time.Duration,
) (*domain.FileGroup, error) {
	if err := ss.validate(files, ttl); err != nil {
		return nil, err
	}

	now := ss.clockNow().UTC()
	names := make([]string, len(files))
	paths := make([]string, len(files))

	g, gCtx := errgroup.WithContext(ctx)
	for i, fh := range files {
		// the record keeps the name as uploaded; only the storage key is sanitized
		names[i] = fh.Filename
		key := genStorageKey(now, i, sanitizeFileName(fh.Filename))

		g.Go(func() error {
			f, err := fh.Open()
			if err != nil {
				return fmt.Errorf("open %q: %w", fh.Filename, err)
			}
			defer f.Close()

			p, err := ss.blobs.Put(gCtx, key, f, fh.Size, fh.Header.Get("Content-Type"))
			if err != nil {
				return fmt.Errorf("put %q: %w", key, err)
			}
			// slots are index-owned, no lock needed
			paths[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		ss.rollbackBlobs(ctx, paths)
		return nil, fmt.Errorf("%w: %v", domain.ErrUpload, err)
	}

	fg := &domain.FileGroup{
		OriginalNames: names,
		StoragePaths:  paths,
		ExpiresAt:     now.Add(ttl),
	}
	out, err := ss.fgRepo.CreateFileGroup(ctx, fg)
	if err != nil {
		ss.rollbackBlobs(ctx, paths)
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	// The group is persisted; a failed schedule only widens the reap window
	// until the next sweep, so it must not fail the create.
	if err = ss.notifier.Schedule(ctx, out.ID, ttl); err != nil {
		ss.logger.Warn("expiry schedule failed, sweep will reap",
			zap.String("group_id", out.ID.String()),
			zap.Error(err),
		)
	}

	ss.mCounter.WithLabelValues("groups_created_total").Inc()
	ss.mCounter.WithLabelValues("files_uploaded_total").Add(float64(len(files)))

	return out, nil
}

func (ss *ShareService) validate(files []*multipart.FileHeader, ttl time.Duration) error {
	if len(files) == 0 {
		return fmt.Errorf("%w: no files uploaded", domain.ErrValidation)
	}
	if len(files) > ss.limits.MaxFileCount {
		return fmt.Errorf("%w: too many files (%d > %d)", domain.ErrValidation, len(files), ss.limits.MaxFileCount)
	}
	if ttl <= 0 || ttl > ss.limits.MaxTTL {
		return fmt.Errorf("%w: ttl out of range", domain.ErrValidation)
	}
	for _, fh := range files {
		if fh.Size <= 0 || fh.Size > ss.limits.MaxFileSizeBytes {
			return fmt.Errorf("%w: file %q too large or empty", domain.ErrValidation, fh.Filename)
		}
	}
	return nil
}

func (ss *ShareService) rollbackBlobs(ctx context.Context, paths []string) {
	// the surrounding errgroup context is likely cancelled already
	ctx = context.WithoutCancel(ctx)
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := ss.blobs.Delete(ctx, p); err != nil {
			ss.logger.Error("rollback blob delete failed",
				zap.String("path", p),
				zap.Error(err),
			)
		}
	}
}

// Resolve is the single validity check every read path goes through.
// Expiry is judged by timestamp at call time: a row that outlived its
// ExpiresAt yields ErrExpired even though the reaper has not run yet.
func (ss *ShareService) Resolve(ctx context.Context, id uuid.UUID) (*domain.FileGroup, time.Duration, error) {
	fg, err := ss.fgRepo.FetchFileGroup(ctx, id)
	if err != nil {
		return nil, 0, err
	}

	now := ss.clockNow().UTC()
	if fg.Expired(now) {
		return nil, 0, domain.ErrExpired
	}

	return fg, fg.Remaining(now), nil
}

// FetchOne streams a single blob through a signed URL scoped to the group's
// remaining TTL, so the retrieval capability can never outlive the record.
func (ss *ShareService) FetchOne(ctx context.Context, id uuid.UUID, index int) (io.ReadCloser, *ports.BlobInfo, error) {
	fg, remaining, err := ss.Resolve(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if index < 0 || index >= len(fg.StoragePaths) {
		return nil, nil, fmt.Errorf("%w: no file at index %d", domain.ErrNotFound, index)
	}

	rc, info, err := ss.blobs.Fetch(ctx, fg.StoragePaths[index], remaining)
	if err != nil {
		return nil, nil, err
	}
	info.FileName = fg.OriginalNames[index]

	ss.mCounter.WithLabelValues("downloads_total").Inc()

	return rc, info, nil
}

// FetchArchive streams every blob into a zip written directly to w, one
// in-flight file at a time, entries in OriginalNames order.
func (ss *ShareService) FetchArchive(ctx context.Context, id uuid.UUID, w io.Writer) error {
	fg, remaining, err := ss.Resolve(ctx, id)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	seen := make(map[string]struct{}, len(fg.OriginalNames))
	for i, p := range fg.StoragePaths {
		name := fg.OriginalNames[i]
		if _, dup := seen[name]; dup {
			name = fmt.Sprintf("%d-%s", i, name)
		}
		seen[name] = struct{}{}

		if err = ss.appendEntry(ctx, zw, name, p, remaining); err != nil {
			_ = zw.Close()
			return err
		}
	}

	ss.mCounter.WithLabelValues("archives_total").Inc()

	return zw.Close()
}

func (ss *ShareService) appendEntry(
	ctx context.Context,
	zw *zip.Writer,
	name, path string,
	remaining time.Duration,
) error {
	rc, _, err := ss.blobs.Fetch(ctx, path, remaining)
	if err != nil {
		return err
	}
	defer rc.Close()

	entry, err := zw.Create(name)
	if err != nil {
		return err
	}
	if _, err = io.Copy(entry, rc); err != nil {
		return fmt.Errorf("archive entry %q: %w", name, err)
	}

	return nil
}

// Reap tears a group down: blobs first, metadata last, so a crash mid-reap
// leaves the record behind for the next sweep instead of orphaning blobs.
// Absent groups are a success (already reaped), which makes the race between
// the event path and the sweep harmless.
func (ss *ShareService) Reap(ctx context.Context, id uuid.UUID) error {
	fg, err := ss.fgRepo.FetchFileGroup(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}

	for _, p := range fg.StoragePaths {
		if err = ss.blobs.Delete(ctx, p); err != nil {
			// best-effort: a stuck blob must not block metadata cleanup
			ss.logger.Error("blob delete failed during reap",
				zap.String("group_id", id.String()),
				zap.String("path", p),
				zap.Error(err),
			)
			ss.mCounter.WithLabelValues("blobs_reap_failed_total").Inc()
		}
	}

	if err = ss.fgRepo.DeleteFileGroup(ctx, id); err != nil {
		return err
	}

	ss.mCounter.WithLabelValues("groups_reaped_total").Inc()

	return nil
}

// Sweep reaps every group whose expiry instant has passed. Safe to run
// concurrently with the event-driven path; Reap absorbs the overlap.
func (ss *ShareService) Sweep(ctx context.Context) (int, error) {
	expired, err := ss.fgRepo.FetchExpiredBefore(ctx, ss.clockNow().UTC())
	if err != nil {
		return 0, err
	}

	var reaped int
	for _, fg := range expired {
		if err = ss.Reap(ctx, fg.ID); err != nil {
			ss.logger.Error("sweep reap failed",
				zap.String("group_id", fg.ID.String()),
				zap.Error(err),
			)
			continue
		}
		reaped++
	}

	return reaped, nil
}

// genStorageKey: "groups/YYYY/MM/DD/<unix-nano>-<idx>-<filename>"
// The nanosecond prefix keeps equal names from colliding across groups.
func genStorageKey(now time.Time, idx int, fileName string) string {
	return fmt.Sprintf(
		"groups/%04d/%02d/%02d/%d-%d-%s",
		now.Year(), int(now.Month()), now.Day(),
		now.UnixNano(), idx, fileName,
	)
}

// sanitizeFileName makes a name ASCII and storage-safe: diacritics are
// stripped, whitespace collapses to '_', anything else unsafe to '-'.
func sanitizeFileName(original string) string {
	if original == "" {
		return "file"
	}

	s := strings.TrimSpace(original)
	s = strings.ReplaceAll(s, "\\", "/")
	s = path.Base(s)

	if s == "." || s == ".." || s == "" {
		return "file"
	}

	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	s, _, _ = transform.String(t, s)

	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII || r == '\x00' || r < 0x20 {
			return -1
		}
		return r
	}, s)

	s = whitespaceRe.ReplaceAllString(s, "_")

	ext := path.Ext(s)
	if ext == "." {
		ext = ""
	}
	base := strings.TrimSuffix(s, ext)
	ext = strings.ToLower(ext)

	base = leadingDotsRe.ReplaceAllString(base, "")
	base = fileSafeRe.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-. ")
	if len(base) > maxBaseNameLen {
		base = base[:maxBaseNameLen]
	}
	if base == "" {
		base = "file"
	}

	return base + ext
}

func isMn(r rune) bool { return unicode.Is(unicode.Mn, r) }
