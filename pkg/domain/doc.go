/*
Package domain contains the core domain models of the abacus calculator.

It defines the expression state machine's snapshot, the error taxonomy surfaced
on the output display, history entries and the lifecycle hooks used for
observability. This package is kept pure and free of I/O or persistence,
following Hexagonal Architecture principles.

# Key Entities

  - State: the in-progress Expression, the RepeatState used by repeated
    equals presses, the Evaluated/Scientific flags and a Display snapshot.
  - CalcError: a non-fatal calculator failure with a Kind and display Message.
  - HistoryEntry: an (expression text, result) pair recorded after a result.
*/
package domain
