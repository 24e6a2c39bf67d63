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

// Package config loads runtime settings for the bindings.
//
// Settings come from built-in defaults, then an optional YAML file, then
// environment variables prefixed with SAFECALL_. A double underscore in a
// variable name separates sections:
//
//	SAFECALL_LOG__LEVEL=debug
//	SAFECALL_EIO__QUEUE_SIZE=256
package config
