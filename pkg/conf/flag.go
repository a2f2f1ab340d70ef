// Copyright (c) 2017 Intel Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package conf

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/alecthomas/kingpin.v2"
)

// flagType is an internal interface for all flags.
// Every flag knows the environment variable that overrides it and how to
// clear that variable.
type flagType interface {
	envName() string
	clear()
}

// definedFlags stores all the defined flags so that a flag defined twice (for
// example by two packages) resolves to the same instance.
var definedFlags = map[string]flagType{}

// cliAndEnvFlag represents option's definition from CLI and environment variable.
type cliAndEnvFlag struct {
	*kingpin.FlagClause
}

func newCliAndEnvFlag(flagName string, description string, defaultValue string) *cliAndEnvFlag {
	c := &cliAndEnvFlag{FlagClause: app.Flag(flagName, description)}
	c.OverrideDefaultFromEnvar(c.envName())
	if defaultValue != "" {
		c.Default(defaultValue)
	}
	return c
}

func envNameFor(flagName string) string {
	return fmt.Sprintf("%s_%s", EnvironmentPrefix, strings.ToUpper(flagName))
}

// envName returns name converted to environment variable name.
// For instance: "prometheus_addr" will be "BENCH_PROMETHEUS_ADDR".
func (f *cliAndEnvFlag) envName() string {
	return envNameFor(f.Model().Name)
}

// clear unsets the corresponding environment variable.
func (f *cliAndEnvFlag) clear() {
	os.Unsetenv(f.envName())
}

// register stores flag under its name and invalidates previous parse results.
func register(flagName string, flag flagType) {
	definedFlags[flagName] = flag
	isEnvParsed = false
}

// redefined returns previously defined flag of the same name, panicking when
// the redefinition does not match the original one.
func redefined(flagName string, sameDefault func(flagType) bool) flagType {
	duplicatedFlag, ok := definedFlags[flagName]
	if !ok {
		return nil
	}
	if !sameDefault(duplicatedFlag) {
		panic(fmt.Sprintf("flag %q was redefined with different type or default value", flagName))
	}
	return duplicatedFlag
}

// StringFlag represents flag with string value.
type StringFlag struct {
	*cliAndEnvFlag
	defaultValue string
	value        *string
}

// NewStringFlag is a constructor of StringFlag struct.
func NewStringFlag(flagName string, description string, defaultValue string) *StringFlag {
	if dup := redefined(flagName, func(f flagType) bool {
		s, ok := f.(*StringFlag)
		return ok && s.defaultValue == defaultValue
	}); dup != nil {
		return dup.(*StringFlag)
	}

	flagDef := &StringFlag{
		cliAndEnvFlag: newCliAndEnvFlag(flagName, description, defaultValue),
		defaultValue:  defaultValue,
	}
	flagDef.value = flagDef.String()
	register(flagName, flagDef)
	return flagDef
}

// Value returns value of defined flag after parse.
// NOTE: If conf is not parsed it returns default value (!)
func (s StringFlag) Value() string {
	if !isEnvParsed {
		return s.defaultValue
	}
	return *s.value
}

// IntFlag represents flag with int value.
type IntFlag struct {
	*cliAndEnvFlag
	defaultValue int
	value        *int
}

// NewIntFlag is a constructor of IntFlag struct.
func NewIntFlag(flagName string, description string, defaultValue int) *IntFlag {
	if dup := redefined(flagName, func(f flagType) bool {
		i, ok := f.(*IntFlag)
		return ok && i.defaultValue == defaultValue
	}); dup != nil {
		return dup.(*IntFlag)
	}

	flagDef := &IntFlag{
		cliAndEnvFlag: newCliAndEnvFlag(flagName, description, strconv.Itoa(defaultValue)),
		defaultValue:  defaultValue,
	}
	flagDef.value = flagDef.Int()
	register(flagName, flagDef)
	return flagDef
}

// Value returns value of defined flag after parse.
// NOTE: If conf is not parsed it returns default value (!)
func (i IntFlag) Value() int {
	if !isEnvParsed {
		return i.defaultValue
	}
	return *i.value
}

// Float64Flag represents flag with float value.
type Float64Flag struct {
	*cliAndEnvFlag
	defaultValue float64
	value        *float64
}

// NewFloat64Flag is a constructor of Float64Flag struct.
func NewFloat64Flag(flagName string, description string, defaultValue float64) *Float64Flag {
	if dup := redefined(flagName, func(f flagType) bool {
		fl, ok := f.(*Float64Flag)
		return ok && fl.defaultValue == defaultValue
	}); dup != nil {
		return dup.(*Float64Flag)
	}

	flagDef := &Float64Flag{
		cliAndEnvFlag: newCliAndEnvFlag(flagName, description, strconv.FormatFloat(defaultValue, 'g', -1, 64)),
		defaultValue:  defaultValue,
	}
	flagDef.value = flagDef.Float64()
	register(flagName, flagDef)
	return flagDef
}

// Value returns value of defined flag after parse.
// NOTE: If conf is not parsed it returns default value (!)
func (f Float64Flag) Value() float64 {
	if !isEnvParsed {
		return f.defaultValue
	}
	return *f.value
}

// SliceFlag represents flag with slice value.
type SliceFlag struct {
	*cliAndEnvFlag
	defaultValue []string
	value        *[]string
}

// NewSliceFlag is a constructor of SliceFlag struct.
func NewSliceFlag(flagName string, description string, elemsInDefaultSlice ...string) *SliceFlag {
	if dup := redefined(flagName, func(f flagType) bool {
		s, ok := f.(*SliceFlag)
		return ok && strings.Join(s.defaultValue, stringListDelimiter) == strings.Join(elemsInDefaultSlice, stringListDelimiter)
	}); dup != nil {
		return dup.(*SliceFlag)
	}

	flagDef := &SliceFlag{
		cliAndEnvFlag: newCliAndEnvFlag(flagName, description, strings.Join(elemsInDefaultSlice, stringListDelimiter)),
		defaultValue:  elemsInDefaultSlice,
	}
	flagDef.value = StringList(flagDef)
	register(flagName, flagDef)
	return flagDef
}

// Value returns value of defined flag after parse.
// Before parse it returns the default elements.
func (s SliceFlag) Value() []string {
	if !isEnvParsed {
		return append([]string{}, s.defaultValue...)
	}
	return append([]string{}, *s.value...)
}

// BoolFlag represents flag with bool value.
type BoolFlag struct {
	*cliAndEnvFlag
	defaultValue bool
	value        *bool
}

// NewBoolFlag is a constructor of BoolFlag struct.
func NewBoolFlag(flagName string, description string, defaultValue bool) *BoolFlag {
	if dup := redefined(flagName, func(f flagType) bool {
		b, ok := f.(*BoolFlag)
		return ok && b.defaultValue == defaultValue
	}); dup != nil {
		return dup.(*BoolFlag)
	}

	flagDef := &BoolFlag{
		cliAndEnvFlag: newCliAndEnvFlag(flagName, description, strconv.FormatBool(defaultValue)),
		defaultValue:  defaultValue,
	}
	flagDef.value = flagDef.Bool()
	register(flagName, flagDef)
	return flagDef
}

// Value returns value of defined flag after parse.
// NOTE: If conf is not parsed it returns default value (!)
func (b BoolFlag) Value() bool {
	if !isEnvParsed {
		return b.defaultValue
	}
	return *b.value
}

// DurationFlag represents flag with duration value.
type DurationFlag struct {
	*cliAndEnvFlag
	defaultValue time.Duration
	value        *time.Duration
}

// NewDurationFlag is a constructor of DurationFlag struct.
func NewDurationFlag(flagName string, description string, defaultValue time.Duration) *DurationFlag {
	if dup := redefined(flagName, func(f flagType) bool {
		d, ok := f.(*DurationFlag)
		return ok && d.defaultValue == defaultValue
	}); dup != nil {
		return dup.(*DurationFlag)
	}

	flagDef := &DurationFlag{
		cliAndEnvFlag: newCliAndEnvFlag(flagName, description, defaultValue.String()),
		defaultValue:  defaultValue,
	}
	flagDef.value = flagDef.Duration()
	register(flagName, flagDef)
	return flagDef
}

// Value returns value of defined flag after parse.
// NOTE: If conf is not parsed it returns default value (!)
func (d DurationFlag) Value() time.Duration {
	if !isEnvParsed {
		return d.defaultValue
	}
	return *d.value
}
