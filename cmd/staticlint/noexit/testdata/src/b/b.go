package b

import "os"

func main() {
	os.Exit(1)
}
