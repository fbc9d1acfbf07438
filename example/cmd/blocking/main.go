package main

import (
	"context"
	"fmt"
	"log"
	"os"

	singlestorebulk "github.com/zikwall/singlestore-bulk"
	"github.com/zikwall/singlestore-bulk/src/cx"
	"github.com/zikwall/singlestore-bulk/src/db/cxmysql"
)

type metric struct {
	name  string
	value float64
}

func (m metric) Row() cx.Row {
	return cx.Row{m.name, fmt.Sprint(m.value)}
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	singlestore, _, err := cxmysql.NewSingleStore(ctx, &cxmysql.Config{
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

	client := singlestorebulk.NewClient(ctx, singlestore)
	defer client.Close()

	table, err := cx.NewTable("metrics", "name", "value")
	if err != nil {
		log.Panicln(err)
	}

	writeAPI := client.WriterBlocking(table)
	affected, err := writeAPI.WriteRow(ctx,
		metric{name: "cpu", value: 0.42},
		metric{name: "mem", value: 0.73},
		metric{name: "disk", value: 0.11},
	)
	if err != nil {
		log.Panicln(err)
	}
	log.Printf("server confirmed %d rows", affected)
}
