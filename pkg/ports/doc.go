/*
Package ports defines the driven ports (interfaces) of the abacus calculator.

These interfaces decouple the expression engine from the surfaces and storage
around it, so the engine can be driven headlessly in tests, from a terminal,
over HTTP or over MCP.

# Key Interfaces

  - Display: a write-mostly text surface (the input and output displays).
  - Evaluator: turns normalized arithmetic text into a number.
  - HistorySink / HistoryStore: append-only record of calculations.
  - StateStore: persists session State for stateless hosts.
  - DistributedLocker: coordinates session access across replicas.
*/
package ports
