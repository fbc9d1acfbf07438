package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	singlestorebulk "github.com/zikwall/singlestore-bulk"
	"github.com/zikwall/singlestore-bulk/src/buffer/cxmem"
	"github.com/zikwall/singlestore-bulk/src/cx"
	"github.com/zikwall/singlestore-bulk/src/db/cxmysql"
)

type event struct {
	id      int
	country string
	comment string
}

func (e event) Row() cx.Row {
	return cx.Row{fmt.Sprint(e.id), e.country, e.comment}
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	singlestore, conn, err := cxmysql.NewSingleStore(ctx, &cxmysql.Config{
		Address:  os.Getenv("SINGLESTORE_HOST"),
		User:     os.Getenv("SINGLESTORE_USER"),
		Password: os.Getenv("SINGLESTORE_PASS"),
		Database: os.Getenv("SINGLESTORE_DB"),
	}, &cx.RuntimeOptions{})
	if err != nil {
		log.Panicln(err)
	}
	defer func() {
		if err := singlestore.Close(); err != nil {
			log.Println(err)
		}
	}()

	if _, err = conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS events (
			id INT NOT NULL,
			country VARCHAR(8) NOT NULL,
			comment TEXT NOT NULL
		)
	`); err != nil {
		log.Panicln(err)
	}

	client, err := singlestorebulk.NewClientWithOptions(ctx, singlestore, singlestorebulk.NewOptions(
		singlestorebulk.WithFlushInterval(1000),
		singlestorebulk.WithBatchSize(5000),
		singlestorebulk.WithDebugMode(true),
	))
	if err != nil {
		log.Panicln(err)
	}
	defer client.Close()

	table, err := cx.NewTable("events", "id", "country", "comment")
	if err != nil {
		log.Panicln(err)
	}

	writeAPI := client.Writer(ctx, table, cxmem.NewBuffer(client.Options().BatchSize()))
	errs := writeAPI.Errors()
	go func() {
		for err := range errs {
			log.Printf("load error: %v", err)
		}
	}()

	for i := 0; i < 100000; i++ {
		writeAPI.WriteRow(event{
			id:      i,
			country: "RU",
			comment: fmt.Sprintf("comment with\ttab and\nnewline %d", i),
		})
	}

	<-time.After(time.Second * 2)
	batches, rows := writeAPI.Stats()
	log.Printf("loaded %d rows in %d batches", rows, batches)
}
