package config

import "strings"

// envKeyReplacer turns nested keys into env names: kubectl.binary -> KUBEGEN_KUBECTL_BINARY.
var envKeyReplacer = strings.NewReplacer(".", "_", "-", "_")
