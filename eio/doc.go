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

// Package eio binds an asynchronous file request queue to the safecall
// convention.
//
// A Loop runs submitted requests on a pool of workers
// (golang.org/x/sync/errgroup) against a billy filesystem. Submissions use
// the ambient strategy: when the queue is full or the loop is shut down
// they return a *safecall.AsyncIOError instead of a request. Each Request
// keeps its own outcome; Result uses the handle strategy on the request.
//
// Callbacks run only from Poll and EventLoop, on the caller's goroutine,
// outside any wrapped call, so a callback may submit more requests.
package eio
