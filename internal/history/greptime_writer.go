package history

import (
	"context"
	"fmt"
	"net"
	"strconv"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"github.com/VolaTeQ/litchitool/internal/logging"
)

// DefaultGreptimeTable is the table history rows are written to.
const DefaultGreptimeTable = "mission_history"

const defaultGreptimePort = 4001

type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter writes history entries to GreptimeDB via the ingester client.
type GreptimeDBWriter struct {
	client greptimeClient
	table  string
}

// NewGreptimeDBWriter connects to endpoint ("host" or "host:port").
// An empty tableName selects DefaultGreptimeTable.
func NewGreptimeDBWriter(endpoint, database, tableName string) (*GreptimeDBWriter, error) {
	host, port, err := splitEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	cfg := greptime.NewConfig(host).WithPort(port)
	if database != "" {
		cfg = cfg.WithDatabase(database)
	}
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	if tableName == "" {
		tableName = DefaultGreptimeTable
	}
	return &GreptimeDBWriter{client: client, table: tableName}, nil
}

func splitEndpoint(endpoint string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(endpoint)
	if err != nil {
		return endpoint, defaultGreptimePort, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid greptime port %q: %w", portStr, err)
	}
	return host, port, nil
}

// Write inserts a single entry.
func (w *GreptimeDBWriter) Write(ctx context.Context, e Entry) error {
	return w.WriteBatch(ctx, []Entry{e})
}

// WriteBatch inserts multiple entries in one request.
func (w *GreptimeDBWriter) WriteBatch(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	tbl, err := w.newTable()
	if err != nil {
		return err
	}
	for _, e := range entries {
		err := tbl.AddRow(
			e.ID,
			e.Operation,
			e.Source,
			e.Name,
			int64(e.Waypoints),
			int64(e.POIs),
			e.StartLat,
			e.StartLon,
			int64(e.Bytes),
			e.ObjectID,
			e.Timestamp,
		)
		if err != nil {
			return err
		}
	}

	log := logging.FromContext(ctx)
	if _, err := w.client.Write(ctx, tbl); err != nil {
		log.Error("greptime write failed", "table", w.table, "err", err)
		return err
	}
	log.Debug("greptime write", "table", w.table, "rows", len(entries))
	return nil
}

func (w *GreptimeDBWriter) newTable() (*table.Table, error) {
	tbl, err := table.New(w.table)
	if err != nil {
		return nil, err
	}
	columns := []struct {
		name string
		tag  bool
		typ  types.ColumnType
	}{
		{"id", true, types.STRING},
		{"operation", true, types.STRING},
		{"source", false, types.STRING},
		{"name", false, types.STRING},
		{"waypoints", false, types.INT64},
		{"pois", false, types.INT64},
		{"start_lat", false, types.FLOAT64},
		{"start_lon", false, types.FLOAT64},
		{"bytes", false, types.INT64},
		{"object_id", false, types.STRING},
	}
	for _, c := range columns {
		add := tbl.AddFieldColumn
		if c.tag {
			add = tbl.AddTagColumn
		}
		if err := add(c.name, c.typ); err != nil {
			return nil, err
		}
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return nil, err
	}
	return tbl, nil
}
