package main

import "cohort-checkin/cmd/server"

func main() {
	server.Init()
	server.Run()
}
