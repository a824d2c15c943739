//
//  Copyright © Manetu Inc. All rights reserved.
//

package common

import (
	"encoding/json"
	"fmt"
	"io"
)

// PrettyPrint writes a readable JSON representation of the provided data
// structure to w. Marshaling failures are reported on w as well rather
// than returned; the output is diagnostic, not data.
func PrettyPrint(w io.Writer, data interface{}) {
	p, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		fmt.Fprintln(w, err)
	} else {
		fmt.Fprintf(w, "%s \n", p)
	}
}
