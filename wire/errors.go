/*
 * Copyright (c) 2018 XLAB d.o.o
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package wire

import (
	"errors"
	"fmt"
)

var malformedStr = "is not of the proper form"

var (
	ErrMalformedPublicKey       = errors.New(fmt.Sprintf("public key %s", malformedStr))
	ErrMalformedCiphertext      = errors.New(fmt.Sprintf("ciphertext %s", malformedStr))
	ErrMalformedSecretKey       = errors.New(fmt.Sprintf("secret key %s", malformedStr))
	ErrMalformedCompressedKey   = errors.New(fmt.Sprintf("compressed secret key %s", malformedStr))
	ErrMalformedFHVector        = errors.New(fmt.Sprintf("fuzzy-hash vector %s", malformedStr))
	ErrUnknownGroupBackend      = errors.New("unknown group backend name")
	ErrUnknownUnionDiscriminant = errors.New("unknown tagged-union discriminant")
)
