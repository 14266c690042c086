package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"

	"github.com/punchamoorthee/txreplay/internal/csvio"
	"github.com/punchamoorthee/txreplay/internal/models"
	"github.com/shopspring/decimal"
)

const maxClients = 1<<16 - 1

var (
	clients  int
	records  int
	workload string
	seed     int64
	outPath  string
)

func init() {
	flag.IntVar(&clients, "clients", 1000, "Number of distinct clients")
	flag.IntVar(&records, "records", 100000, "Number of records to generate")
	flag.StringVar(&workload, "workload", "uniform", "Workload type: uniform | hotspot")
	flag.Int64Var(&seed, "seed", 1, "Random seed")
	flag.StringVar(&outPath, "out", "", "Output file (default stdout)")
}

func main() {
	flag.Parse()
	if err := validate(clients, records, workload); err != nil {
		log.Fatal(err)
	}

	out := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			log.Fatalf("Unable to create output: %v", err)
		}
		defer f.Close()
		out = f
	}

	g := newGenerator(rand.New(rand.NewSource(seed)), clients, workload == "hotspot")
	recs := make([]models.Record, 0, records)
	for i := 0; i < records; i++ {
		recs = append(recs, g.next())
	}

	w := bufio.NewWriter(out)
	if err := csvio.WriteRecords(w, recs); err != nil {
		log.Fatalf("Write failed: %v", err)
	}
	if err := w.Flush(); err != nil {
		log.Fatalf("Write failed: %v", err)
	}
	log.Printf("Generated %d records for %d clients (%s)", records, clients, workload)
}

func validate(clients, records int, workload string) error {
	if clients < 2 || clients > maxClients {
		return fmt.Errorf("-clients must be between 2 and %d", maxClients)
	}
	if records < 0 {
		return fmt.Errorf("-records must not be negative, got %d", records)
	}
	if workload != "uniform" && workload != "hotspot" {
		return fmt.Errorf("unknown workload %q", workload)
	}
	return nil
}

// generator emits records that reference earlier deposits so that
// disputes, resolves and chargebacks hit real transactions.
type generator struct {
	rng      *rand.Rand
	clients  int
	hotspot  bool
	nextTx   models.TxID
	deposits map[models.ClientID][]models.TxID
	disputed map[models.ClientID][]models.TxID
}

func newGenerator(rng *rand.Rand, clients int, hotspot bool) *generator {
	return &generator{
		rng:      rng,
		clients:  clients,
		hotspot:  hotspot,
		deposits: make(map[models.ClientID][]models.TxID),
		disputed: make(map[models.ClientID][]models.TxID),
	}
}

func (g *generator) next() models.Record {
	client := g.client()
	roll := g.rng.Intn(100)

	switch {
	case roll < 12 && len(g.deposits[client]) > 0:
		tx := g.pick(g.deposits[client])
		g.disputed[client] = append(g.disputed[client], tx)
		return models.Record{Type: models.TxDispute, Client: client, Tx: tx}
	case roll < 21 && len(g.disputed[client]) > 0:
		return models.Record{Type: models.TxResolve, Client: client, Tx: g.popDisputed(client)}
	case roll < 22 && len(g.disputed[client]) > 0:
		return models.Record{Type: models.TxChargeback, Client: client, Tx: g.popDisputed(client)}
	case roll < 55:
		return models.Record{Type: models.TxWithdrawal, Client: client, Tx: g.tx(), Amount: g.amount()}
	default:
		tx := g.tx()
		g.deposits[client] = append(g.deposits[client], tx)
		return models.Record{Type: models.TxDeposit, Client: client, Tx: tx, Amount: g.amount()}
	}
}

// client follows the benchmark workloads: hotspot sends 90% of traffic to
// clients 1 and 2.
func (g *generator) client() models.ClientID {
	if g.hotspot && g.rng.Float32() < 0.90 {
		return models.ClientID(1 + g.rng.Intn(2))
	}
	return models.ClientID(1 + g.rng.Intn(g.clients))
}

func (g *generator) tx() models.TxID {
	g.nextTx++
	return g.nextTx
}

// amount returns a value in (0, 100] with four decimal places.
func (g *generator) amount() decimal.Decimal {
	return decimal.New(g.rng.Int63n(1_000_000)+1, -4)
}

func (g *generator) pick(ids []models.TxID) models.TxID {
	return ids[g.rng.Intn(len(ids))]
}

func (g *generator) popDisputed(client models.ClientID) models.TxID {
	ids := g.disputed[client]
	i := g.rng.Intn(len(ids))
	tx := ids[i]
	g.disputed[client] = append(ids[:i], ids[i+1:]...)
	return tx
}
