package main

import "erphrm/internal/app/server"

func main() {
	server.Run()
}
