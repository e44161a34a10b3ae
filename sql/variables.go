// Copyright 2023 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sql

// ServerVersion is the MySQL version reported by version() and @@version.
const ServerVersion = "8.0.17"

// ServerVariables is the static table of server variables @@references are
// resolved against. Keys carry the @@ prefix. Values follow what a stock
// MySQL 8 server reports; clients read these during handshake probes.
var ServerVariables = map[string]interface{}{
	"@@autocommit":                       int64(1),
	"@@auto_increment_increment":         int64(1),
	"@@character_set_client":             "utf8mb4",
	"@@character_set_connection":         "utf8mb4",
	"@@character_set_database":           "utf8mb4",
	"@@character_set_results":            "utf8mb4",
	"@@character_set_server":             "utf8mb4",
	"@@collation_connection":             "utf8mb4_0900_ai_ci",
	"@@collation_database":               "utf8mb4_0900_ai_ci",
	"@@collation_server":                 "utf8mb4_0900_ai_ci",
	"@@init_connect":                     "",
	"@@interactive_timeout":              int64(28800),
	"@@license":                          "GPL",
	"@@lower_case_table_names":           int64(0),
	"@@max_allowed_packet":               int64(16777216),
	"@@net_buffer_length":                int64(16384),
	"@@net_write_timeout":                int64(60),
	"@@performance_schema":               int64(0),
	"@@query_cache_size":                 int64(1048576),
	"@@query_cache_type":                 "OFF",
	"@@sql_mode":                         "ONLY_FULL_GROUP_BY,STRICT_TRANS_TABLES,NO_ZERO_IN_DATE,NO_ZERO_DATE,ERROR_FOR_DIVISION_BY_ZERO,NO_ENGINE_SUBSTITUTION",
	"@@system_time_zone":                 "UTC",
	"@@time_zone":                        "SYSTEM",
	"@@tx_isolation":                     "REPEATABLE-READ",
	"@@transaction_isolation":            "REPEATABLE-READ",
	"@@session.auto_increment_increment": int64(1),
	"@@session.tx_isolation":             "REPEATABLE-READ",
	"@@session.transaction_isolation":    "REPEATABLE-READ",
	"@@version":                          ServerVersion,
	"@@version_comment":                  "MySQL Community Server (GPL)",
	"@@wait_timeout":                     int64(28800),
}
