package lib

import "github.com/ccfrost/albumdrop/internal/logging"

var logger = logging.New("lib")
