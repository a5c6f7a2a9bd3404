// Command import_bookings loads bookings exported with mongoexport from the
// previous storefront into the sqlite store. Ids, statuses and creation
// times are kept; bookings already present are skipped.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"washify/internal/database"
	"washify/internal/models"

	"github.com/rs/zerolog"
)

// mongoID accepts both {"$oid": "..."} and a plain string.
type mongoID string

func (id *mongoID) UnmarshalJSON(data []byte) error {
	var oid struct {
		OID string `json:"$oid"`
	}
	if err := json.Unmarshal(data, &oid); err == nil && oid.OID != "" {
		*id = mongoID(oid.OID)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("unsupported _id %s", data)
	}
	*id = mongoID(s)
	return nil
}

// mongoDate accepts {"$date": "..."}, {"$date": millis} and RFC 3339 strings.
type mongoDate time.Time

func (d *mongoDate) UnmarshalJSON(data []byte) error {
	var wrapped struct {
		Date json.RawMessage `json:"$date"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && len(wrapped.Date) > 0 {
		data = wrapped.Date
	}

	var millis int64
	if err := json.Unmarshal(data, &millis); err == nil {
		*d = mongoDate(time.UnixMilli(millis).UTC())
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("unsupported date %s", data)
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return err
	}
	*d = mongoDate(t)
	return nil
}

type exportedBooking struct {
	ID         mongoID   `json:"_id"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	City       string    `json:"city"`
	Address    string    `json:"address"`
	Date       string    `json:"date"`
	TimeSlot   string    `json:"timeSlot"`
	Packages   []string  `json:"packages"`
	Car        string    `json:"car"`
	Price      int       `json:"price"`
	WaterPower bool      `json:"waterPower"`
	Status     string    `json:"status"`
	CreatedAt  mongoDate `json:"createdAt"`
}

func (e exportedBooking) booking() *models.Booking {
	return &models.Booking{
		ID:         string(e.ID),
		Name:       e.Name,
		Phone:      e.Phone,
		City:       e.City,
		Address:    e.Address,
		Date:       e.Date,
		TimeSlot:   e.TimeSlot,
		Packages:   e.Packages,
		Car:        e.Car,
		Price:      e.Price,
		WaterPower: e.WaterPower,
		Status:     e.Status,
		CreatedAt:  time.Time(e.CreatedAt),
	}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	var (
		inPath = flag.String("in", "bookings.json", "mongoexport output (JSON array or one document per line)")
		dbPath = flag.String("db", "./data/washify.db", "path to sqlite db")
	)
	flag.Parse()

	data, err := os.ReadFile(*inPath)
	if err != nil {
		return fmt.Errorf("read export: %w", err)
	}
	docs, err := decodeExport(data)
	if err != nil {
		return fmt.Errorf("parse export: %w", err)
	}
	if len(docs) == 0 {
		return fmt.Errorf("no bookings in %s", *inPath)
	}

	db, err := database.NewDB(*dbPath, &logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	created, skipped := 0, 0
	for _, doc := range docs {
		ok, err := db.ImportBooking(ctx, doc.booking())
		if err != nil {
			logger.Warn().Err(err).Str("booking_id", string(doc.ID)).Msg("skip booking")
			skipped++
			continue
		}
		if ok {
			created++
		} else {
			skipped++
		}
	}

	fmt.Printf("done: created=%d skipped=%d\n", created, skipped)
	return nil
}

func decodeExport(data []byte) ([]exportedBooking, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var docs []exportedBooking
		if err := json.Unmarshal(trimmed, &docs); err != nil {
			return nil, err
		}
		return docs, nil
	}

	var docs []exportedBooking
	reader := bufio.NewReader(bytes.NewReader(trimmed))
	for line := 1; ; line++ {
		raw, err := reader.ReadString('\n')
		if s := strings.TrimSpace(raw); s != "" {
			var doc exportedBooking
			if uerr := json.Unmarshal([]byte(s), &doc); uerr != nil {
				return nil, fmt.Errorf("line %d: %w", line, uerr)
			}
			docs = append(docs, doc)
		}
		if err == io.EOF {
			return docs, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
