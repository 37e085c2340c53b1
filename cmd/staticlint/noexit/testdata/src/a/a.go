package main

import (
	"log"
	"os"
)

func main() {
	defer func() {
		os.Exit(0) // замыкание не проверяется
	}()
	os.Exit(1)        // want "вызов os.Exit в функции main запрещён"
	log.Fatal("boom") // want "вызов log.Fatal в функции main запрещён"
}

func helper() {
	os.Exit(2)
}
