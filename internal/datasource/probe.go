package datasource

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/expectation-labs/gxctl/internal/logging"
)

// DefaultProbeTimeout bounds a single probe when none is configured.
const DefaultProbeTimeout = 10 * time.Second

// DataFileExtensions are the file types offered as assets of file-backed
// datasources.
var DataFileExtensions = []string{".csv", ".tsv", ".txt"}

// Prober checks that a datasource is reachable and lists its assets.
type Prober interface {
	// Probe returns a *ConnectionError when the backend cannot be reached.
	Probe(ctx context.Context, d Descriptor) error
	// ListAssets returns the data assets the datasource exposes: data files
	// for file-backed kinds, schema-qualified tables for SQL.
	ListAssets(ctx context.Context, d Descriptor) ([]string, error)
}

// DefaultProber probes real backends.
type DefaultProber struct {
	Timeout time.Duration
	Logger  *slog.Logger
	dialer  net.Dialer
}

// NewProber returns a prober bounded by timeout.
func NewProber(timeout time.Duration, logger *slog.Logger) *DefaultProber {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &DefaultProber{Timeout: timeout, Logger: logging.OrDiscard(logger)}
}

// Probe implements Prober.
func (p *DefaultProber) Probe(ctx context.Context, d Descriptor) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout())
	defer cancel()

	switch d.Kind {
	case KindFilesystem:
		return probeDirectory(d.Name, d.Filesystem.BaseDirectory)
	case KindSpark:
		if err := probeDirectory(d.Name, d.Spark.BaseDirectory); err != nil {
			return err
		}
		return p.probeSparkMaster(ctx, d.Name, d.Spark.Master)
	case KindSQL:
		return p.probeSQL(ctx, d)
	default:
		return &ValidationError{Field: "kind", Message: fmt.Sprintf("is not supported: %s", d.Kind)}
	}
}

// ListAssets implements Prober.
func (p *DefaultProber) ListAssets(ctx context.Context, d Descriptor) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout())
	defer cancel()

	switch d.Kind {
	case KindFilesystem, KindSpark:
		return ListDataFiles(d.BaseDirectory())
	case KindSQL:
		conn, err := OpenSQL(d.SQL.URL)
		if err != nil {
			return nil, sqlConnectionError(d.Name, err)
		}
		defer conn.Close()
		return conn.ListTables(ctx)
	default:
		return nil, &ValidationError{Field: "kind", Message: fmt.Sprintf("is not supported: %s", d.Kind)}
	}
}

func (p *DefaultProber) timeout() time.Duration {
	if p.Timeout <= 0 {
		return DefaultProbeTimeout
	}
	return p.Timeout
}

func probeDirectory(name, dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ConnectionError{Name: name, Reason: fmt.Sprintf("directory %s does not exist", dir), Err: err}
		}
		return &ConnectionError{Name: name, Reason: fmt.Sprintf("cannot read directory %s", dir), Err: err}
	}
	if !info.IsDir() {
		return &ConnectionError{Name: name, Reason: fmt.Sprintf("%s is not a directory", dir)}
	}
	return nil
}

// probeSparkMaster dials standalone masters. Local and cluster-manager
// masters (yarn, k8s) have nothing to dial from here.
func (p *DefaultProber) probeSparkMaster(ctx context.Context, name, master string) error {
	if !strings.HasPrefix(master, "spark://") {
		p.Logger.Debug("skipping spark master dial", "datasource", name, "master", master)
		return nil
	}

	hosts := strings.Split(strings.TrimPrefix(master, "spark://"), ",")
	var lastErr error
	for _, host := range hosts {
		if _, _, err := net.SplitHostPort(host); err != nil {
			host = net.JoinHostPort(host, "7077")
		}
		conn, err := p.dialer.DialContext(ctx, "tcp", host)
		if err == nil {
			conn.Close()
			return nil
		}
		lastErr = err
	}
	return &ConnectionError{Name: name, Reason: fmt.Sprintf("spark master %s is unreachable", master), Err: lastErr}
}

func (p *DefaultProber) probeSQL(ctx context.Context, d Descriptor) error {
	p.Logger.Debug("probing database", "datasource", d.Name, "url", RedactURL(d.SQL.URL))

	conn, err := OpenSQL(d.SQL.URL)
	if err != nil {
		return sqlConnectionError(d.Name, err)
	}
	defer conn.Close()

	if err := conn.Ping(ctx); err != nil {
		return &ConnectionError{Name: d.Name, Reason: "the database did not answer a test query", Err: err}
	}
	return nil
}

func sqlConnectionError(name string, err error) error {
	var schemeErr *UnsupportedSchemeError
	if errors.As(err, &schemeErr) {
		return &ConnectionError{
			Name:   name,
			Reason: fmt.Sprintf("%q databases are not supported (use sqlite, postgresql, redshift or mysql)", schemeErr.Scheme),
			Err:    err,
		}
	}
	return &ConnectionError{Name: name, Reason: "the connection string could not be used", Err: err}
}

// ListDataFiles returns the data files directly inside dir, sorted.
func ListDataFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if IsDataFile(e.Name()) {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// IsDataFile reports whether name has a known data file extension.
func IsDataFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, known := range DataFileExtensions {
		if ext == known {
			return true
		}
	}
	return false
}

// AssetName derives a data asset name from a file path: the base name
// without its extension ("data/Titanic.csv" becomes "Titanic").
func AssetName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
