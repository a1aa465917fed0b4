package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/chrisdamba/foodpredict/internal/cloudwriter"
	"github.com/chrisdamba/foodpredict/internal/models"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

const parallelism = 4

type ForecastRow struct {
	ID           string  `parquet:"name=id,type=BYTE_ARRAY,convertedtype=UTF8"`
	RestaurantID string  `parquet:"name=restaurantId,type=BYTE_ARRAY,convertedtype=UTF8"`
	MenuItemID   string  `parquet:"name=menuItemId,type=BYTE_ARRAY,convertedtype=UTF8"`
	ItemName     string  `parquet:"name=itemName,type=BYTE_ARRAY,convertedtype=UTF8"`
	ForecastDate string  `parquet:"name=forecastDate,type=BYTE_ARRAY,convertedtype=UTF8"`
	DayOfWeek    int32   `parquet:"name=dayOfWeek,type=INT32"`
	PredictedQty int32   `parquet:"name=predictedQty,type=INT32"`
	ActualQty    *int32  `parquet:"name=actualQty,type=INT32,repetitiontype=OPTIONAL"`
	Confidence   float64 `parquet:"name=confidence,type=DOUBLE"`
	Trend        string  `parquet:"name=trend,type=BYTE_ARRAY,convertedtype=UTF8"`
	UpdatedAt    int64   `parquet:"name=updatedAt,type=INT64"`
}

type ScheduleRow struct {
	ID                 string `parquet:"name=id,type=BYTE_ARRAY,convertedtype=UTF8"`
	Date               string `parquet:"name=date,type=BYTE_ARRAY,convertedtype=UTF8"`
	TimeSlot           string `parquet:"name=timeSlot,type=BYTE_ARRAY,convertedtype=UTF8"`
	PredictedOrders    int32  `parquet:"name=predictedOrders,type=INT32"`
	ActualOrders       *int32 `parquet:"name=actualOrders,type=INT32,repetitiontype=OPTIONAL"`
	IsPeakTime         bool   `parquet:"name=isPeakTime,type=BOOLEAN"`
	CapacityStatus     string `parquet:"name=capacityStatus,type=BYTE_ARRAY,convertedtype=UTF8"`
	RecommendedDrivers int32  `parquet:"name=recommendedDrivers,type=INT32"`
	UpdatedAt          int64  `parquet:"name=updatedAt,type=INT64"`
}

func ForecastRows(forecasts []models.QuantityForecast) []ForecastRow {
	rows := make([]ForecastRow, len(forecasts))
	for i, f := range forecasts {
		rows[i] = ForecastRow{
			ID:           f.ID,
			RestaurantID: f.RestaurantID,
			MenuItemID:   f.MenuItemID,
			ItemName:     f.ItemName,
			ForecastDate: f.ForecastDate.Format(time.DateOnly),
			DayOfWeek:    int32(f.ForecastDate.Weekday()),
			PredictedQty: int32(f.PredictedQty),
			ActualQty:    optionalInt32(f.ActualQty),
			Confidence:   f.Confidence,
			Trend:        f.Factors.Trend,
			UpdatedAt:    f.UpdatedAt.UnixMilli(),
		}
	}
	return rows
}

func ScheduleRows(schedules []models.DeliverySchedule) []ScheduleRow {
	rows := make([]ScheduleRow, len(schedules))
	for i, s := range schedules {
		rows[i] = ScheduleRow{
			ID:                 s.ID,
			Date:               s.Date.Format(time.DateOnly),
			TimeSlot:           s.TimeSlot,
			PredictedOrders:    int32(s.PredictedOrders),
			ActualOrders:       optionalInt32(s.ActualOrders),
			IsPeakTime:         s.IsPeakTime,
			CapacityStatus:     string(s.CapacityStatus),
			RecommendedDrivers: int32(s.RecommendedDrivers),
			UpdatedAt:          s.UpdatedAt.UnixMilli(),
		}
	}
	return rows
}

func optionalInt32(v *int) *int32 {
	if v == nil {
		return nil
	}
	n := int32(*v)
	return &n
}

// Exporter writes parquet files to a local folder, or to a bucket when a
// cloud writer factory is set.
type Exporter struct {
	folder  string
	bucket  string
	factory cloudwriter.CloudWriterFactory
}

func NewLocalExporter(folder string) *Exporter {
	return &Exporter{folder: folder}
}

func NewCloudExporter(factory cloudwriter.CloudWriterFactory, bucket, folder string) *Exporter {
	return &Exporter{folder: folder, bucket: bucket, factory: factory}
}

// NewExporter builds an exporter from config: "s3" uploads to the bucket,
// anything else writes under the local folder.
func NewExporter(ctx context.Context, cfg models.ExportConfig) (*Exporter, error) {
	switch cfg.Destination {
	case "", "local":
		return NewLocalExporter(cfg.Folder), nil
	case "s3":
		factory, err := cloudwriter.NewS3WriterFactory(ctx, cfg.Region)
		if err != nil {
			return nil, fmt.Errorf("failed to create cloud writer factory: %w", err)
		}
		return NewCloudExporter(factory, cfg.BucketName, cfg.Folder), nil
	default:
		return nil, fmt.Errorf("unsupported export destination: %s", cfg.Destination)
	}
}

// ExportForecasts writes forecasts to <folder>/forecasts/<name>.parquet and
// returns the written location.
func (e *Exporter) ExportForecasts(ctx context.Context, name string, forecasts []models.QuantityForecast) (string, error) {
	rows := ForecastRows(forecasts)
	items := make([]interface{}, len(rows))
	for i := range rows {
		items[i] = rows[i]
	}
	return e.write(ctx, path.Join("forecasts", name+".parquet"), new(ForecastRow), items)
}

func (e *Exporter) ExportSchedules(ctx context.Context, name string, schedules []models.DeliverySchedule) (string, error) {
	rows := ScheduleRows(schedules)
	items := make([]interface{}, len(rows))
	for i := range rows {
		items[i] = rows[i]
	}
	return e.write(ctx, path.Join("schedules", name+".parquet"), new(ScheduleRow), items)
}

func (e *Exporter) write(ctx context.Context, objectPath string, schema interface{}, rows []interface{}) (string, error) {
	fw, location, err := e.open(ctx, objectPath)
	if err != nil {
		return "", err
	}

	pw, err := writer.NewParquetWriter(fw, schema, parallelism)
	if err != nil {
		fw.Close()
		return "", fmt.Errorf("failed to create ParquetWriter: %w", err)
	}
	for _, row := range rows {
		if err := pw.Write(row); err != nil {
			fw.Close()
			return "", fmt.Errorf("failed to write row: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		fw.Close()
		return "", fmt.Errorf("failed to finish parquet file: %w", err)
	}
	if err := fw.Close(); err != nil {
		return "", err
	}
	return location, nil
}

func (e *Exporter) open(ctx context.Context, objectPath string) (source.ParquetFile, string, error) {
	if e.factory != nil {
		key := path.Join(e.folder, objectPath)
		cw, err := e.factory.NewWriter(ctx, e.bucket, key)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create cloud file writer: %w", err)
		}
		return NewCloudParquetFile(cw), "s3://" + e.bucket + "/" + key, nil
	}

	filePath := filepath.Join(e.folder, filepath.FromSlash(objectPath))
	if err := os.MkdirAll(filepath.Dir(filePath), os.ModePerm); err != nil {
		return nil, "", err
	}
	fw, err := local.NewLocalFileWriter(filePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create local file writer: %w", err)
	}
	return fw, filePath, nil
}

// CloudParquetFile adapts a write-only CloudWriter to source.ParquetFile.
type CloudParquetFile struct {
	cloudWriter cloudwriter.CloudWriter
	offset      int64
}

func NewCloudParquetFile(cloudWriter cloudwriter.CloudWriter) *CloudParquetFile {
	return &CloudParquetFile{cloudWriter: cloudWriter}
}

func (c *CloudParquetFile) Open(name string) (source.ParquetFile, error) {
	return c, nil
}

func (c *CloudParquetFile) Create(name string) (source.ParquetFile, error) {
	return c, nil
}

func (c *CloudParquetFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		c.offset = offset
	case io.SeekCurrent:
		c.offset += offset
	default:
		return 0, fmt.Errorf("seek from end not supported for cloud storage")
	}
	return c.offset, nil
}

func (c *CloudParquetFile) Read(p []byte) (int, error) {
	return 0, fmt.Errorf("read not supported for cloud storage")
}

func (c *CloudParquetFile) Write(p []byte) (int, error) {
	n, err := c.cloudWriter.Write(p)
	c.offset += int64(n)
	return n, err
}

func (c *CloudParquetFile) Close() error {
	return c.cloudWriter.Close()
}
