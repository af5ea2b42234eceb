package server

import "github.com/ccfrost/albumdrop/internal/logging"

var logger = logging.New("server")
