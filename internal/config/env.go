package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// envKeyReplacer maps nested keys such as security.jwtaccesssecret to
// BUILDFLOW_SECURITY_JWTACCESSSECRET.
var envKeyReplacer = strings.NewReplacer(".", "_")

// envOnlyKeys have no default. Unmarshal only sees keys viper already
// knows, so they are bound explicitly to be readable from the environment
// alone.
var envOnlyKeys = []string{
	"postgres.dsn",
	"redis.password",
	"storage.endpoint",
	"storage.accesskey",
	"storage.secretkey",
	"security.jwtaccesssecret",
	"security.signaturesecret",
	"oauth.google.enabled",
	"oauth.google.clientid",
	"oauth.google.clientsecret",
	"oauth.google.redirecturl",
	"tls.enabled",
	"tls.certfile",
	"tls.keyfile",
	"log.level",
	"http.trustedproxies",
	"allowcorsorigins",
}

func bindEnv(v *viper.Viper) error {
	for _, key := range envOnlyKeys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	return nil
}
