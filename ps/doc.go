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

// Package ps writes PostScript documents and binds the writer to the
// safecall convention.
//
// A Document moves through scopes: object, document, page and path. An
// operation called outside its scopes, such as ShowXY before BeginPage or
// drawing after Close, fails through the ambient register with
// code.PreconditionFailed and returns a *safecall.DocumentError.
//
// FindFont returns 0 from its native layer on failure; font ids start at 1.
package ps
