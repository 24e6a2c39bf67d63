/*
   Copyright 2025 The DIRPX Authors

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package config

import (
	"fmt"

	"dirpx.dev/safecall/apis"
	"dirpx.dev/safecall/code"
	"dirpx.dev/safecall/mapper"
)

// MapperConfig adjusts how error codes map to transport statuses.
type MapperConfig struct {
	Overrides []StatusRule `koanf:"overrides" validate:"dive"`
	Prefixes  []StatusRule `koanf:"prefixes" validate:"dive"`
}

// StatusRule maps a code, optionally restricted to a reason prefix, to an
// HTTP status, a gRPC code, or both. GRPC takes a name ("NOT_FOUND") or a
// number.
type StatusRule struct {
	Code   string `koanf:"code" validate:"required"`
	Prefix string `koanf:"prefix"`
	HTTP   int    `koanf:"http" validate:"omitempty,gte=100,lte=599"`
	GRPC   string `koanf:"grpc"`
}

// Options converts the rules into mapper options. Overrides ignore Prefix;
// prefix rules require it.
func (m MapperConfig) Options() ([]mapper.Option, error) {
	var opts []mapper.Option
	for i, r := range m.Overrides {
		o, err := r.options(fmt.Sprintf("mapper.overrides[%d]", i), false)
		if err != nil {
			return nil, err
		}
		opts = append(opts, o...)
	}
	for i, r := range m.Prefixes {
		o, err := r.options(fmt.Sprintf("mapper.prefixes[%d]", i), true)
		if err != nil {
			return nil, err
		}
		opts = append(opts, o...)
	}
	return opts, nil
}

func (r StatusRule) options(where string, prefixed bool) ([]mapper.Option, error) {
	c, err := code.Parse(r.Code)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", where, err)
	}
	if prefixed && r.Prefix == "" {
		return nil, fmt.Errorf("config: %s: prefix is required", where)
	}
	if r.HTTP == 0 && r.GRPC == "" {
		return nil, fmt.Errorf("config: %s: set http, grpc or both", where)
	}
	var opts []mapper.Option
	if r.HTTP != 0 {
		if prefixed {
			opts = append(opts, mapper.WithHTTPPrefix(c, r.Prefix, r.HTTP))
		} else {
			opts = append(opts, mapper.WithHTTPOverride(c, r.HTTP))
		}
	}
	if r.GRPC != "" {
		g, err := mapper.ParseGRPCCode(r.GRPC)
		if err != nil {
			return nil, fmt.Errorf("config: %s: %w", where, err)
		}
		if prefixed {
			opts = append(opts, mapper.WithGRPCPrefix(c, r.Prefix, g))
		} else {
			opts = append(opts, mapper.WithGRPCOverride(c, g))
		}
	}
	return opts, nil
}

// NewMapper builds a mapper with the configured rules on top of the
// defaults.
func (c *Config) NewMapper() (apis.Mapper, error) {
	opts, err := c.Mapper.Options()
	if err != nil {
		return nil, err
	}
	return mapper.New(opts...)
}
