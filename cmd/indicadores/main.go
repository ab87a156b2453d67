package main

import (
	"indicadores-backend/cmd/indicadores/commands"
	"indicadores-backend/lib/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
