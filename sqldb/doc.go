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

// Package sqldb binds statement-oriented SQL access to the safecall
// convention. It runs on database/sql with the pure-Go SQLite driver from
// github.com/glebarez/go-sqlite.
//
// The flow is Connect, Parse, BindByName, Execute, then FetchAssoc or
// FetchAll. Connections and statements each keep their last failure,
// returned by Error. Failed calls return a *safecall.SQLError; SQLite
// result codes are kept as Errno and classified by Classify.
//
// Execute in NoAutoCommit mode opens a transaction that stays open until
// Commit, Rollback, or an Execute in CommitOnSuccess mode.
package sqldb
