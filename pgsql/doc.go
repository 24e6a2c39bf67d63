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

// Package pgsql binds PostgreSQL access, through github.com/jackc/pgx/v5,
// to the safecall convention.
//
// A Conn keeps the error of its last call, read back by LastError. Failed
// calls return a *safecall.DatabaseError. Server errors carry the
// SQLSTATE in the "sqlstate" detail and are classified by Classify;
// connection failures without a SQLSTATE count as class 08.
//
// Query and Execute buffer the whole result. Result.FetchAssoc returns nil
// without an error once the rows are exhausted.
package pgsql
