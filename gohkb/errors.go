package gohkb

import "errors"

// Errors
var (
	ErrIllegalAttach    = errors.New("neither node accepted the edge")
	ErrDuplicateEdge    = errors.New("an edge already connects these nodes")
	ErrNotQueryable     = errors.New("node is only reachable through its chain root")
	ErrBadFraction      = errors.New("bad fraction")
	ErrLogLayers        = errors.New("log layers exceeds 5")
	ErrUnknownGenerator = errors.New("unknown step generator")
	ErrBadWorldLine     = errors.New("bad world description line")
	ErrBadNodeID        = errors.New("bad node ID")
	ErrZeroDirection    = errors.New("chain direction is zero")
	ErrBadConfig        = errors.New("bad config param")
	ErrBufferUnderflow  = errors.New("buffer underflow")
	ErrBadToken         = errors.New("bad stream token")
)
