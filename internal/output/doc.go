// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package output writes records as a single pretty-printed JSON array.
//
// Writer streams the array to any io.Writer. FileWriter streams it into a
// temporary file next to the destination and only replaces the destination
// on Commit, so a run that fails midway leaves any previous file untouched.
//
// Every element is indented by two spaces, HTML escaping is off, and object
// keys come out in the order the record type declares them.
//
// Example usage:
//
//	w, err := output.NewFileWriter("all-activity.json")
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//
//	for _, entry := range entries {
//	    if err := w.Write(entry); err != nil {
//	        return err
//	    }
//	}
//	return w.Commit()
package output
