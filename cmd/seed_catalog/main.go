// seed_catalog genera un script SQL para cargar el catálogo inicial de productos
// a partir del CSV de un proveedor (UTF-8 o ISO-8859-1, separador ';' o ',').
//
// Uso: go run ./cmd/seed_catalog [-charset auto|utf-8|latin1] [-out archivo.sql] catalogo.csv
// Columnas: reference;name;category;brand;purchase_cost;sale_price;stock;stock_minimum
// Los productos con stock > 0 reciben su movimiento Entrée "STOCK-INITIAL".
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

func main() {
	charset := flag.String("charset", "auto", "codificación del CSV: auto, utf-8 o latin1")
	outFlag := flag.String("out", "", "script de salida (por defecto seeds/catalog.sql en la raíz del módulo)")
	flag.Parse()

	csvPath := "catalogo.csv"
	if flag.NArg() > 0 {
		csvPath = flag.Arg(0)
	}
	raw, err := os.ReadFile(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}

	r, err := decodeReader(bytes.NewReader(raw), *charset, raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Codificación: %v\n", err)
		os.Exit(1)
	}
	rows, err := parseCatalog(r)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	outPath := *outFlag
	if outPath == "" {
		outPath = filepath.Join(findModuleRoot(), "seeds", "catalog.sql")
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Crear directorio: %v\n", err)
			os.Exit(1)
		}
	}
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := writeSQL(out, rows, filepath.Base(csvPath), time.Now().UTC()); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d productos\n", outPath, len(rows))
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
